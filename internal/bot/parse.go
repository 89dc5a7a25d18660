package bot

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"rivalwatch/internal/model"
)

// EntityArgs holds the parsed arguments of /addlocation and /addcompetitor.
type EntityArgs struct {
	LocationID int64
	Name       string
	Address    string
	Website    string
}

// ParseLocationArgs parses arguments for /addlocation.
// Format: <name> [| <address> [| <website>]]
func ParseLocationArgs(args string) (EntityArgs, error) {
	return parseEntity(args)
}

// ParseCompetitorArgs parses arguments for /addcompetitor.
// Format: <location_id> <name> [| <address> [| <website>]]
func ParseCompetitorArgs(args string) (EntityArgs, error) {
	parts := strings.SplitN(strings.TrimSpace(args), " ", 2)
	if len(parts) < 2 {
		return EntityArgs{}, fmt.Errorf("usage: <location_id> <name> | <address> | <website>")
	}
	locID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return EntityArgs{}, fmt.Errorf("invalid location ID %q", parts[0])
	}
	e, err := parseEntity(parts[1])
	if err != nil {
		return EntityArgs{}, err
	}
	e.LocationID = locID
	return e, nil
}

func parseEntity(args string) (EntityArgs, error) {
	fields := strings.Split(args, "|")
	if len(fields) > 3 {
		return EntityArgs{}, fmt.Errorf("too many fields, use: <name> | <address> | <website>")
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	var e EntityArgs
	e.Name = fields[0]
	if e.Name == "" {
		return EntityArgs{}, fmt.Errorf("name is required")
	}
	if len(fields) > 1 {
		e.Address = fields[1]
	}
	if len(fields) > 2 {
		e.Website = fields[2]
		if e.Website != "" {
			u, err := url.Parse(e.Website)
			if err != nil || u.Host == "" {
				return EntityArgs{}, fmt.Errorf("invalid website %q", e.Website)
			}
		}
	}
	return e, nil
}

// ParseIDArg extracts a numeric ID from a command argument string.
func ParseIDArg(args string) (int64, error) {
	s := strings.TrimSpace(args)
	if s == "" {
		return 0, fmt.Errorf("ID is required")
	}
	id, err := strconv.ParseInt(strings.Fields(s)[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid ID %q", s)
	}
	return id, nil
}

// ParseBriefingArgs extracts an optional location ID and date key.
// Format: [<location_id>] [YYYY-MM-DD]
func ParseBriefingArgs(args string) (int64, string, error) {
	var locID int64
	var dateKey string
	for _, p := range strings.Fields(args) {
		if _, err := time.Parse(model.DateKeyLayout, p); err == nil && dateKey == "" {
			dateKey = p
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil || locID != 0 || id <= 0 {
			return 0, "", fmt.Errorf("usage: /briefing [location_id] [YYYY-MM-DD]")
		}
		locID = id
	}
	return locID, dateKey, nil
}
