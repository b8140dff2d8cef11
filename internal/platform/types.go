package platform

import "time"

// ButtonStyle mirrors the platform's button palette.
type ButtonStyle int

const (
	ButtonPrimary ButtonStyle = iota + 1
	ButtonSecondary
	ButtonSuccess
	ButtonDanger
)

// Button is one interactive button in an action row.
type Button struct {
	CustomID string
	Label    string
	Style    ButtonStyle
	Emoji    string
	Disabled bool
}

// SelectOption is one entry of a select menu.
type SelectOption struct {
	Label       string
	Value       string
	Description string
}

// SelectMenu is a single-choice dropdown component.
type SelectMenu struct {
	CustomID    string
	Placeholder string
	Options     []SelectOption
}

// ActionRow groups components on one line. A row holds either buttons or a
// select menu, never both.
type ActionRow struct {
	Buttons []Button
	Select  *SelectMenu
}

// EmbedField is a name/value pair inside an embed.
type EmbedField struct {
	Name   string
	Value  string
	Inline bool
}

// Embed is a rich message block.
type Embed struct {
	Title       string
	Description string
	Color       int
	Fields      []EmbedField
	ImageURL    string
	FooterText  string
	Timestamp   time.Time
}

// File is an attachment to send alongside a message.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Message is an outbound or historical channel message.
type Message struct {
	ID          string
	ChannelID   string
	AuthorID    string
	AuthorName  string
	AuthorIcon  string
	Bot         bool
	Content     string
	Timestamp   time.Time
	Embeds      []Embed
	Components  []ActionRow
	Files       []File
	Attachments []Attachment
}

// Attachment is a file reference on a historical message.
type Attachment struct {
	URL      string
	Filename string
	Width    int
	Height   int
}

// PermissionGrant controls channel visibility for one subject id.
type PermissionGrant struct {
	ID    string
	Allow bool
}

// ChannelCreate describes a new private ticket channel. Grants with
// Allow=false deny view access (the everyone role), the rest are allowed
// full participation.
type ChannelCreate struct {
	Name     string
	ParentID string
	Topic    string
	Grants   []PermissionGrant
}

// Channel is the minimal channel view the engine needs.
type Channel struct {
	ID      string
	GuildID string
	Name    string
	Topic   string
}

// User is a platform account.
type User struct {
	ID       string
	Username string
	IconURL  string
}

// TextFieldStyle selects single-line or paragraph input in a modal.
type TextFieldStyle int

const (
	TextFieldShort TextFieldStyle = iota + 1
	TextFieldParagraph
)

// TextField is one input of a modal form.
type TextField struct {
	CustomID    string
	Label       string
	Style       TextFieldStyle
	Placeholder string
	Required    bool
	MinLength   int
	MaxLength   int
}

// Modal is a form collected from the user.
type Modal struct {
	CustomID string
	Title    string
	Fields   []TextField
}

// Response is the payload of a reply or follow-up to an interaction.
type Response struct {
	Content   string
	Embeds    []Embed
	Ephemeral bool
}
