package blog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"blogdesk/internal/models"
)

// Alternate key names, in priority order, for each canonical field.
var (
	idKeys          = []string{"id", "_id"}
	titleKeys       = []string{"title", "blogTitle"}
	descriptionKeys = []string{"desc", "blogContent", "blogSubtitle"}
	summaryKeys     = []string{"summary", "metaDescription"}
	imageKeys       = []string{"image", "blogImage"}
	dateKeys        = []string{"date", "blogDate"}
	authorKeys      = []string{"author", "blogAuthor"}
	linkKeys        = []string{"blogLink", "mediumLink"}
	categoryKeys    = []string{"category", "blogCategory"}
)

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006-01",
	"2006",
	"Mon Jan 02 2006 15:04:05",
	"January 2, 2006",
	"Jan 2, 2006",
}

// Normalize converts one raw blog record into its canonical form. raw may be
// a decoded JSON object, JSON text (string, []byte or json.RawMessage), or
// nil. It never fails: any field that cannot be resolved takes its default.
func Normalize(raw any, now time.Time) models.Blog {
	fields := decodeRecord(raw)

	description := firstString(fields, descriptionKeys...)
	summary := firstString(fields, summaryKeys...)
	if summary == "" {
		summary = description
	}

	return models.Blog{
		ID:           firstString(fields, idKeys...),
		Title:        stringOr(firstString(fields, titleKeys...), models.DefaultTitle),
		Description:  description,
		Summary:      summary,
		ImageURL:     stringOr(firstString(fields, imageKeys...), models.DefaultImageURL),
		PublishedAt:  resolveDate(fields, now),
		Author:       resolveAuthor(fields),
		ExternalLink: stringOr(firstString(fields, linkKeys...), models.DefaultExternalLink),
		Visibility:   resolveVisibility(fields),
		Category:     firstString(fields, categoryKeys...),
	}
}

// NormalizeAll normalizes a list of raw records, preserving order.
func NormalizeAll(raws []json.RawMessage, now time.Time) []models.Blog {
	out := make([]models.Blog, 0, len(raws))
	for _, raw := range raws {
		out = append(out, Normalize(raw, now))
	}
	return out
}

func decodeRecord(raw any) map[string]any {
	switch v := raw.(type) {
	case nil:
		return map[string]any{}
	case map[string]any:
		return v
	case json.RawMessage:
		return parseObject(v)
	case []byte:
		return parseObject(v)
	case string:
		return parseObject([]byte(v))
	default:
		slog.Debug("normalize: unsupported record type", "type", fmt.Sprintf("%T", raw))
		return map[string]any{}
	}
}

func parseObject(data []byte) map[string]any {
	obj, err := parseJSONObject(data)
	if err != nil {
		slog.Debug("normalize: record is not a JSON object", "error", err)
		return map[string]any{}
	}
	return obj
}

func parseJSONObject(data []byte) (map[string]any, error) {
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("null object")
	}
	return obj, nil
}

func resolveAuthor(fields map[string]any) models.Author {
	var (
		author     models.Author
		plainName  bool
		haveSource = true
	)

	switch v := firstValue(fields, authorKeys...).(type) {
	case string:
		text := strings.TrimSpace(v)
		if strings.HasPrefix(text, "{") && strings.HasSuffix(text, "}") {
			obj, err := parseJSONObject([]byte(text))
			if err != nil {
				slog.Debug("normalize: author is not valid JSON", "error", err)
				author.Name = v
				plainName = true
			} else {
				author = authorFromMap(obj)
			}
		} else {
			author.Name = v
			plainName = true
		}
	case map[string]any:
		author = authorFromMap(v)
	default:
		haveSource = false
		author = models.Author{Name: models.DefaultAuthorName, Department: models.DefaultAuthorDept}
	}

	if departmentUnset(author.Department) {
		if dept := firstString(fields, "authorDepartment"); dept != "" {
			author.Department = dept
		}
	}
	if departmentUnset(author.Department) {
		if dept := departmentFromDetails(fields["authorDetails"]); dept != "" {
			author.Department = dept
		}
	}

	if strings.TrimSpace(author.Name) == "" {
		author.Name = models.DefaultAuthorName
	}
	if author.Department == "" && (!plainName || !haveSource) {
		author.Department = models.DefaultAuthorDept
	}
	return author
}

func authorFromMap(obj map[string]any) models.Author {
	return models.Author{
		Name:       firstString(obj, "name"),
		Department: firstString(obj, "department", "dept"),
	}
}

func departmentFromDetails(raw any) string {
	var details map[string]any
	switch v := raw.(type) {
	case map[string]any:
		details = v
	case string:
		obj, err := parseJSONObject([]byte(v))
		if err != nil {
			slog.Debug("normalize: authorDetails is not valid JSON", "error", err)
			return ""
		}
		details = obj
	default:
		return ""
	}
	return firstString(details, "department", "dept")
}

func departmentUnset(dept string) bool {
	return dept == "" || dept == models.DefaultAuthorDept
}

func resolveDate(fields map[string]any, now time.Time) time.Time {
	switch v := firstValue(fields, dateKeys...).(type) {
	case string:
		if parsed, ok := ParseDate(v); ok {
			return parsed
		}
		slog.Debug("normalize: unparsable date", "value", v)
	case float64:
		if v != 0 {
			return time.UnixMilli(int64(v)).UTC()
		}
	}
	return now
}

// ParseDate accepts the date strings seen in blog payloads: RFC 3339,
// calendar dates down to a bare year, and JavaScript date strings. Numeric
// timestamps only arrive as JSON numbers and are handled by the caller.
func ParseDate(raw string) (time.Time, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, true
		}
	}
	// Date.toString() appends the offset and a zone name:
	// "Tue Jan 02 2024 10:00:00 GMT+0530 (India Standard Time)".
	if i := strings.Index(value, " ("); i > 0 {
		value = value[:i]
	}
	if parsed, err := time.Parse("Mon Jan 02 2006 15:04:05 GMT-0700", value); err == nil {
		return parsed, true
	}
	return time.Time{}, false
}

func resolveVisibility(fields map[string]any) models.Visibility {
	if raw, ok := fields["visibility"].(string); ok {
		if v, err := models.ParseVisibility(raw); err == nil {
			return v
		}
		slog.Debug("normalize: unknown visibility", "value", raw)
	}
	if published, ok := fields["isPublished"].(bool); ok {
		return models.VisibilityFromPublished(published)
	}
	return models.VisibilityPrivate
}

// firstValue returns the first value among keys that is present and not
// empty, mirroring a chain of `a || b || c`.
func firstValue(fields map[string]any, keys ...string) any {
	for _, key := range keys {
		v, ok := fields[key]
		if !ok || v == nil {
			continue
		}
		if s, isString := v.(string); isString && s == "" {
			continue
		}
		return v
	}
	return nil
}

func firstString(fields map[string]any, keys ...string) string {
	for _, key := range keys {
		switch v := fields[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

func stringOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
