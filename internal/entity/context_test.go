package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactInfoMergeNeverErases(t *testing.T) {
	c := ContactInfo{Name: "Ana", Email: "ana@mail.com"}

	c.Merge(ContactInfo{Phone: "+549115555"})
	assert.Equal(t, "Ana", c.Name)
	assert.Equal(t, "ana@mail.com", c.Email)
	assert.Equal(t, "+549115555", c.Phone)

	// Un update vacío no toca nada.
	c.Merge(ContactInfo{})
	assert.Equal(t, "Ana", c.Name)
	assert.Equal(t, "+549115555", c.Phone)

	// Un dato nuevo sí reemplaza al anterior.
	c.Merge(ContactInfo{Email: "ana.lopez@mail.com"})
	assert.Equal(t, "ana.lopez@mail.com", c.Email)
}

func TestContactInfoIsComplete(t *testing.T) {
	c := ContactInfo{Name: "Ana"}
	assert.False(t, c.IsComplete())

	c.Email = "ana@mail.com"
	assert.False(t, c.IsComplete())

	c.Phone = "+549115555"
	assert.True(t, c.IsComplete())
}

func TestNewConversationContextStartsInitial(t *testing.T) {
	c := NewConversationContext()
	assert.Equal(t, StateInitial, c.State)
	assert.Empty(t, c.LeadID)
	assert.False(t, c.ContactInfo.IsComplete())
}

// El documento persistido mantiene los nombres de campo estables.
func TestConversationContextWireFormat(t *testing.T) {
	c := &ConversationContext{
		ContactInfo: ContactInfo{Name: "Ana", Email: "ana@mail.com", Phone: "+549115555"},
		State:       StateSchedulingAppointment,
		AppointmentDetails: AppointmentDetails{
			Date:          "2026-09-03",
			Time:          "10:00",
			AppointmentID: "apt-1",
			PatientID:     "pat-1",
		},
		LeadID: "lead-1",
	}

	raw, err := json.Marshal(c)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))

	assert.Contains(t, doc, "contact_info")
	assert.Contains(t, doc, "state")
	assert.Contains(t, doc, "appointment_details")
	assert.Contains(t, doc, "lead_id")
	assert.Equal(t, "scheduling_appointment", doc["state"])

	details := doc["appointment_details"].(map[string]any)
	assert.Equal(t, "apt-1", details["appointment_id"])
	assert.Equal(t, "pat-1", details["patient_id"])

	var back ConversationContext
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, *c, back)
}
