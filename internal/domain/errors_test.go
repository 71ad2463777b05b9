package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(Validationf("name is required")))
	assert.Equal(t, KindNotFound, KindOf(NotFoundf("flight %d not found", 7)))
	assert.Equal(t, KindConflict, KindOf(Conflictf("seat 4 is occupied")))
	assert.Equal(t, KindBusinessRule, KindOf(BusinessRulef("inside cancellation window")))
	assert.Equal(t, KindInfrastructure, KindOf(errors.New("connection refused")))
}

func TestKindOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("issue ticket: %w", Conflictf("seat 4 is occupied"))
	assert.Equal(t, KindConflict, KindOf(err))
	assert.True(t, IsKind(err, KindConflict))
	assert.False(t, IsKind(nil, KindConflict))
}

func TestInfraf_PreservesCause(t *testing.T) {
	cause := errors.New("tx aborted")
	err := Infraf(cause, "commit failed")
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "commit failed")
	assert.Contains(t, err.Error(), "tx aborted")
}
