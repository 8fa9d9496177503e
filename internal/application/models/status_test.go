package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "adopsi/pkg/domain-errors"
)

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"draft", "submitted", "under_review", "approved", "rejected", "completed"} {
		parsed, err := ParseStatus(s)
		require.NoErrorf(t, err, "status %s", s)
		assert.Equal(t, Status(s), parsed)
	}

	_, err := ParseStatus("")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	_, err = ParseStatus("archived")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestStatusPredicates(t *testing.T) {
	cases := []struct {
		status       Status
		terminal     bool
		editable     bool
		reviewTarget bool
	}{
		{StatusDraft, false, true, false},
		{StatusSubmitted, false, true, false},
		{StatusUnderReview, false, false, true},
		{StatusApproved, false, false, true},
		{StatusRejected, true, false, true},
		{StatusCompleted, true, false, false},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.terminal, tc.status.IsTerminal(), "%s terminal", tc.status)
		assert.Equalf(t, tc.editable, tc.status.Editable(), "%s editable", tc.status)
		assert.Equalf(t, tc.reviewTarget, tc.status.IsReviewTarget(), "%s review target", tc.status)
	}
}
