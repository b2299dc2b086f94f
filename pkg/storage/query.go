package storage

const (
	queryUpsertLead = `
		INSERT INTO leads (
			session_id, name, phone_number, email, service_interest,
			booking_date, booking_time, status, source_channel,
			metadata, created_at
		) VALUES (
			:session_id, :name, :phone_number, :email, :service_interest,
			:booking_date, :booking_time, :status, :source_channel,
			:metadata, :created_at
		)
		ON CONFLICT (session_id) DO UPDATE SET
			name = EXCLUDED.name,
			phone_number = EXCLUDED.phone_number,
			email = EXCLUDED.email,
			service_interest = EXCLUDED.service_interest,
			booking_date = EXCLUDED.booking_date,
			booking_time = EXCLUDED.booking_time,
			status = EXCLUDED.status,
			source_channel = EXCLUDED.source_channel,
			metadata = EXCLUDED.metadata
	`

	queryInsertLead = `
		INSERT INTO leads (
			session_id, name, phone_number, email, service_interest,
			booking_date, booking_time, status, source_channel,
			metadata, created_at
		) VALUES (
			:session_id, :name, :phone_number, :email, :service_interest,
			:booking_date, :booking_time, :status, :source_channel,
			:metadata, :created_at
		)
	`

	queryInsertCallLog = `
		INSERT INTO call_logs (
			session_id, channel, user_input, detected_intent, confidence,
			bot_response, language, metadata, timestamp
		) VALUES (
			:session_id, :channel, :user_input, :detected_intent, :confidence,
			:bot_response, :language, :metadata, :timestamp
		)
	`

	queryUpdateLeadBySession = `
		UPDATE leads
		SET
			booking_date = :booking_date,
			booking_time = :booking_time,
			status = :status
		WHERE session_id = :session_id
	`
)
