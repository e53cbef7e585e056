package sqlinline

// Inline SQL for the interaction log. Every query carries a "--sql <name>"
// marker line consumed by infra.SQLRunner for log correlation.

const QInsertInteraction = `--sql interactions.insert
INSERT INTO interactions (kind, site_id, site_name, user_text, bot_text, language)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id`

const QInsertVideoEvent = `--sql video_events.insert
INSERT INTO video_events (hash, site_id, status, message)
VALUES ($1, $2, $3, $4)`
