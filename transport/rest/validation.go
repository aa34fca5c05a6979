package rest

import (
	"bytes"
	"encoding/json"
	"regexp"
	"slices"
	"strconv"

	"github.com/google/uuid"
)

const (
	typePositiveInteger        = "positive_integer"
	typeNonNegativeInteger     = "non_negative_integer"
	typeInteger                = "integer"
	typeAlphanumeric           = "alphanumeric"
	typeArrayOfAlphanumeric    = "array_of_alphanumeric"
	typeArrayOfDissimilarValue = "array_of_dissimilar_values"
	typeUUID                   = "uuid"
)

var alphanumeric = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// Limits bounds the board of a new game.
type Limits struct {
	MaxColumns int
	MaxRows    int
}

type createGameRequest struct {
	Players json.RawMessage `json:"players"`
	Columns json.RawMessage `json:"columns"`
	Rows    json.RawMessage `json:"rows"`
}

type makeMoveRequest struct {
	Column json.RawMessage `json:"column"`
}

func isMissing(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)

	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte(`""`))
}

// parseInteger accepts a JSON integer or a string holding one.
func parseInteger(raw json.RawMessage) (int, bool) {
	text := string(bytes.TrimSpace(raw))

	var quoted string
	if err := json.Unmarshal(raw, &quoted); err == nil {
		text = quoted
	}

	value, err := strconv.Atoi(text)
	if err != nil {
		return 0, false
	}

	return value, true
}

func parseDimension(field string, raw json.RawMessage, limit int) (int, error) {
	if isMissing(raw) {
		return 0, missingParamError(field)
	}

	value, ok := parseInteger(raw)
	if !ok || value < 1 || value > limit {
		return 0, validationError(field, typePositiveInteger)
	}

	return value, nil
}

func parsePlayers(raw json.RawMessage) ([]string, error) {
	if isMissing(raw) {
		return nil, missingParamError("players")
	}

	var players []string
	if err := json.Unmarshal(raw, &players); err != nil || len(players) == 0 {
		return nil, validationError("players", typeArrayOfAlphanumeric)
	}

	for _, player := range players {
		if !alphanumeric.MatchString(player) {
			return nil, validationError("players", typeArrayOfAlphanumeric)
		}
	}

	distinct := slices.Clone(players)
	slices.Sort(distinct)

	if len(players) < 2 || len(slices.Compact(distinct)) != len(players) {
		return nil, validationError("players", typeArrayOfDissimilarValue)
	}

	return players, nil
}

func (that createGameRequest) validate(limits Limits) (players []string, columns, rows int, err error) {
	if players, err = parsePlayers(that.Players); err != nil {
		return nil, 0, 0, err
	}

	if columns, err = parseDimension("columns", that.Columns, limits.MaxColumns); err != nil {
		return nil, 0, 0, err
	}

	if rows, err = parseDimension("rows", that.Rows, limits.MaxRows); err != nil {
		return nil, 0, 0, err
	}

	return players, columns, rows, nil
}

func (that makeMoveRequest) validate() (int, error) {
	if isMissing(that.Column) {
		return 0, missingParamError("column")
	}

	column, ok := parseInteger(that.Column)
	if !ok {
		return 0, validationError("column", typeInteger)
	}

	return column, nil
}

func validateGameID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return validationError("gameId", typeUUID)
	}

	return nil
}

func validatePlayerID(id string) error {
	if !alphanumeric.MatchString(id) {
		return validationError("playerId", typeAlphanumeric)
	}

	return nil
}

// parseIndex parses a non-negative integer parameter. An empty value yields nil when optional.
func parseIndex(field, value string, optional bool) (*int, error) {
	if value == "" && optional {
		return nil, nil
	}

	index, err := strconv.Atoi(value)
	if err != nil || index < 0 {
		return nil, validationError(field, typeNonNegativeInteger)
	}

	return &index, nil
}
