package clients

import "errors"

var errMissingIdentity = errors.New("full name and phone are required")

func applyPatch(client *Client, patch map[string]interface{}) {
	if value, ok := patch["full_name"].(string); ok {
		client.FullName = value
	}
	if value, ok := patch["phone"].(string); ok {
		client.Phone = value
	}
	if value, ok := patch["email"].(string); ok {
		client.Email = value
	}
	if raw, present := patch["preferred_barber"]; present {
		if value, ok := raw.(string); ok && value != "" {
			client.PreferredBarber = &value
		} else {
			client.PreferredBarber = nil
		}
	}
	if value, ok := patch["sms_opt_in"].(bool); ok {
		client.SMSOptIn = value
	}
	if value, ok := patch["whatsapp_opt_in"].(bool); ok {
		client.WhatsAppOptIn = value
	}
	if value, ok := patch["notes"].(string); ok {
		client.Notes = value
	}
}
