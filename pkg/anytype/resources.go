package anytype

import "strings"

// SpaceModel distinguishes regular spaces from chat spaces.
type SpaceModel string

const (
	SpaceModelSpace SpaceModel = "space"
	SpaceModelChat  SpaceModel = "chat"
)

// Icon is an emoji, a file or a named colored icon.
type Icon struct {
	Format string `json:"format"          yaml:"format"`
	Emoji  string `json:"emoji,omitempty" yaml:"emoji,omitempty"`
	File   string `json:"file,omitempty"  yaml:"file,omitempty"`
	Name   string `json:"name,omitempty"  yaml:"name,omitempty"`
	Color  string `json:"color,omitempty" yaml:"color,omitempty"`
}

// Space is a workspace on the service.
type Space struct {
	ID          string     `json:"id"                    yaml:"id"`
	Name        string     `json:"name"                  yaml:"name"`
	Object      SpaceModel `json:"object"                yaml:"object"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Icon        *Icon      `json:"icon,omitempty"        yaml:"icon,omitempty"`
	GatewayURL  string     `json:"gateway_url,omitempty" yaml:"gateway_url,omitempty"`
	NetworkID   string     `json:"network_id,omitempty"  yaml:"network_id,omitempty"`
}

// IsChat reports whether the space is a chat space.
func (s *Space) IsChat() bool {
	return s.Object == SpaceModelChat
}

// Tag is a selectable value of a select or multi-select property.
type Tag struct {
	ID    string `json:"id"              yaml:"id"`
	Key   string `json:"key"             yaml:"key"`
	Name  string `json:"name"            yaml:"name"`
	Color string `json:"color,omitempty" yaml:"color,omitempty"`
}

// PropertyFormat is the value format of a property.
type PropertyFormat string

const (
	FormatText        PropertyFormat = "text"
	FormatNumber      PropertyFormat = "number"
	FormatSelect      PropertyFormat = "select"
	FormatMultiSelect PropertyFormat = "multi_select"
	FormatDate        PropertyFormat = "date"
	FormatFiles       PropertyFormat = "files"
	FormatCheckbox    PropertyFormat = "checkbox"
	FormatURL         PropertyFormat = "url"
	FormatEmail       PropertyFormat = "email"
	FormatPhone       PropertyFormat = "phone"
	FormatObjects     PropertyFormat = "objects"
)

// Property is a typed property definition within a space.
type Property struct {
	ID     string         `json:"id"             yaml:"id"`
	Key    string         `json:"key"            yaml:"key"`
	Name   string         `json:"name"           yaml:"name"`
	Format PropertyFormat `json:"format"         yaml:"format"`
	Tags   []Tag          `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Type is an object type within a space.
type Type struct {
	ID         string     `json:"id"                    yaml:"id"`
	Key        string     `json:"key"                   yaml:"key"`
	Name       string     `json:"name,omitempty"        yaml:"name,omitempty"`
	PluralName string     `json:"plural_name,omitempty" yaml:"plural_name,omitempty"`
	Layout     string     `json:"layout,omitempty"      yaml:"layout,omitempty"`
	Archived   bool       `json:"archived"              yaml:"archived"`
	Icon       *Icon      `json:"icon,omitempty"        yaml:"icon,omitempty"`
	Properties []Property `json:"properties,omitempty"  yaml:"properties,omitempty"`
}

// DisplayName returns the name, falling back to the key.
func (t *Type) DisplayName() string {
	if strings.TrimSpace(t.Name) != "" {
		return t.Name
	}

	return t.Key
}

// Single-object response envelopes.
type (
	SpaceResponse struct {
		Space Space `json:"space"`
	}

	PropertyResponse struct {
		Property Property `json:"property"`
	}

	TypeResponse struct {
		Type Type `json:"type"`
	}
)
