package episode

import "time"

// User is the local record of an identity-provider user.
type User struct {
	ID       string `json:"id"`
	Subject  string `json:"subject"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	ImageURL string `json:"image_url"`
}

// Episode is a persisted podcast episode. Author fields are a snapshot
// taken at insert time and are not updated when the user profile changes.
type Episode struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	Author      string `json:"author"`
	AuthorID    string `json:"author_id"`
	AuthorImage string `json:"author_image_url"`
	Title       string `json:"title"`
	Description string `json:"description"`

	AudioURL      string  `json:"audio_url"`
	AudioHandle   string  `json:"audio_storage_id"`
	AudioDuration float64 `json:"audio_duration"`
	ImageURL      string  `json:"image_url"`
	ImageHandle   string  `json:"image_storage_id"`
	VoicePrompt   string  `json:"voice_prompt"`
	ImagePrompt   string  `json:"image_prompt"`
	VoiceType     string  `json:"voice_type"`
	Views         int64   `json:"views"`

	CreatedAt time.Time `json:"created_at"`
}
