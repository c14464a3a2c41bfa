package server

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	nexusdomain "github.com/nexorahq/nexora/internal/nexus/domain"
	ruledomain "github.com/nexorahq/nexora/internal/rule/domain"
	"github.com/nexorahq/nexora/internal/storage"
	transactiondomain "github.com/nexorahq/nexora/internal/transaction/domain"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		typ    string
	}{
		{"validation struct", newValidationError("state", "invalid_state", "invalid value"), http.StatusBadRequest, "validation_error"},
		{"rule validation", ruledomain.ErrMissingThreshold, http.StatusBadRequest, "validation_error"},
		{"bad org", transactiondomain.ErrInvalidOrganization, http.StatusBadRequest, "validation_error"},
		{"bad page token", transactiondomain.ErrInvalidPageToken, http.StatusBadRequest, "validation_error"},
		{"rule not found", ruledomain.ErrNotFound, http.StatusNotFound, "not_found"},
		{"object not found", storage.ErrObjectNotFound, http.StatusNotFound, "not_found"},
		{"record not found", gorm.ErrRecordNotFound, http.StatusNotFound, "not_found"},
		{"recompute in flight", nexusdomain.ErrRecomputeInFlight, http.StatusConflict, "conflict"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, payload := mapError(tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.typ, payload.Type)
		})
	}
}

func TestValidationErrorField(t *testing.T) {
	assert.Equal(t, "request", validationErrorField("invalid_request"))
	assert.Equal(t, "organization", validationErrorField("invalid_organization"))
	assert.Equal(t, "path", validationErrorField("missing_path"))
	assert.Equal(t, "", validationErrorField("something_else"))
}
