package Controllers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaveApprovalHappensOnce(t *testing.T) {
	app := setupApp(t)

	w := app.as("eng1@example.com", http.MethodPost, "/leaves", map[string]string{
		"startDate": "2024-06-10",
		"endDate":   "2024-06-12",
		"reason":    "Family event",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	leave := dataObject(t, w)
	id := leave["id"].(string)
	assert.Equal(t, "pending", leave["status"])
	assert.Equal(t, "annual", leave["leaveType"])
	assert.EqualValues(t, 3, leave["days"])

	// Clients never see pending requests.
	w = app.as("owner@acme.example.com", http.MethodGet, "/leaves", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, dataList(t, w))

	w = app.as("eng1@example.com", http.MethodPost, "/leaves/"+id+"/approve", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = app.as("admin@example.com", http.MethodPost, "/leaves/"+id+"/approve", map[string]string{
		"backupEngineerId": app.ids["eng2@example.com"],
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	approved := dataObject(t, w)
	assert.Equal(t, "approved", approved["status"])
	assert.Equal(t, "Ayu Admin", approved["approverName"])
	assert.Equal(t, "Citra Dewi", approved["backupEngineerName"])

	w = app.as("admin@example.com", http.MethodPost, "/leaves/"+id+"/reject", map[string]string{"reason": "too late"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = app.as("admin@example.com", http.MethodGet, "/leaves/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "approved", dataObject(t, w)["status"])

	w = app.as("owner@acme.example.com", http.MethodGet, "/leaves?status=approved", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, dataList(t, w), 1)
}

func TestRequestLeaveValidation(t *testing.T) {
	app := setupApp(t)

	tests := []struct {
		name string
		body map[string]string
	}{
		{"end before start", map[string]string{"startDate": "2024-06-12", "endDate": "2024-06-10", "reason": "x"}},
		{"bad type", map[string]string{"leaveType": "sabbatical", "startDate": "2024-06-10", "endDate": "2024-06-10", "reason": "x"}},
		{"no reason", map[string]string{"startDate": "2024-06-10", "endDate": "2024-06-10"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := app.as("eng1@example.com", http.MethodPost, "/leaves", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}

	w := app.as("eng1@example.com", http.MethodGet, "/leaves?status=archived", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
