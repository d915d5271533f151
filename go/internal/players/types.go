package players

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mcdev12/multis/go/internal/models"
)

const (
	MaxNameLength     = 20
	DefaultMaxPlayers = 50
)

var (
	ErrPlayerNotFound = errors.New("player not found")
	ErrInvalidPlayer  = errors.New("invalid player")
)

// Avatar is one of the predefined profile pictures.
type Avatar struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// Avatars lists every avatar a profile may use.
var Avatars = []Avatar{
	{ID: "rocket", Label: "Rocket", Description: "A flying rocket ship"},
	{ID: "star", Label: "Star", Description: "A shining star"},
	{ID: "cat", Label: "Cat", Description: "A friendly cat face"},
	{ID: "dog", Label: "Dog", Description: "A happy dog face"},
	{ID: "turtle", Label: "Turtle", Description: "A smiling turtle"},
	{ID: "robot", Label: "Robot", Description: "A cute robot"},
	{ID: "dinosaur", Label: "Dinosaur", Description: "A friendly dinosaur"},
	{ID: "unicorn", Label: "Unicorn", Description: "A magical unicorn"},
	{ID: "planet", Label: "Planet", Description: "A colorful planet"},
	{ID: "flower", Label: "Flower", Description: "A blooming flower"},
	{ID: "lightning", Label: "Lightning", Description: "A lightning bolt"},
	{ID: "crown", Label: "Crown", Description: "A royal crown"},
}

// Color is one of the predefined profile colors.
type Color struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Hex   string `json:"hex"`
}

// Colors lists every color a profile may use.
var Colors = []Color{
	{ID: "red", Label: "Red", Hex: "#E53935"},
	{ID: "orange", Label: "Orange", Hex: "#FB8C00"},
	{ID: "yellow", Label: "Yellow", Hex: "#FDD835"},
	{ID: "green", Label: "Green", Hex: "#43A047"},
	{ID: "teal", Label: "Teal", Hex: "#00897B"},
	{ID: "blue", Label: "Blue", Hex: "#1E88E5"},
	{ID: "purple", Label: "Purple", Hex: "#8E24AA"},
	{ID: "pink", Label: "Pink", Hex: "#D81B60"},
}

var (
	DefaultAvatarID = Avatars[0].ID
	DefaultColorID  = Colors[0].ID
)

// SavePlayerRequest creates a profile or overwrites the one with the same name.
type SavePlayerRequest struct {
	Name     string `json:"name"`
	AvatarID string `json:"avatar_id"`
	ColorID  string `json:"color_id"`
}

// SavePlayerResult is the saved profile plus the names evicted to stay under
// the profile cap.
type SavePlayerResult struct {
	Player  models.Player `json:"player"`
	Evicted []string      `json:"evicted"`
}

// NormalizeName trims surrounding whitespace.
func NormalizeName(name string) string {
	return strings.TrimSpace(name)
}

// NameKey is the case-insensitive identity of a profile name.
func NameKey(name string) string {
	return strings.ToLower(NormalizeName(name))
}

// ValidName reports whether name is 1..MaxNameLength characters after trimming.
func ValidName(name string) bool {
	n := utf8.RuneCountInString(NormalizeName(name))
	return n >= 1 && n <= MaxNameLength
}

func knownAvatar(id string) bool {
	for _, a := range Avatars {
		if a.ID == id {
			return true
		}
	}
	return false
}

func knownColor(id string) bool {
	for _, c := range Colors {
		if c.ID == id {
			return true
		}
	}
	return false
}

// Normalize trims the name, fills in the default avatar and color and
// validates the result.
func (req *SavePlayerRequest) Normalize() error {
	req.Name = NormalizeName(req.Name)
	if !ValidName(req.Name) {
		return fmt.Errorf("%w: name must be 1 to %d characters", ErrInvalidPlayer, MaxNameLength)
	}
	if req.AvatarID == "" {
		req.AvatarID = DefaultAvatarID
	}
	if !knownAvatar(req.AvatarID) {
		return fmt.Errorf("%w: unknown avatar %q", ErrInvalidPlayer, req.AvatarID)
	}
	if req.ColorID == "" {
		req.ColorID = DefaultColorID
	}
	if !knownColor(req.ColorID) {
		return fmt.Errorf("%w: unknown color %q", ErrInvalidPlayer, req.ColorID)
	}
	return nil
}
