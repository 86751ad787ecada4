package store

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"internhunt-engine/internal/domain"
)

var Columns = []string{
	"id", "company_name", "role_title", "location", "location_type",
	"duration", "stipend", "stipend_numeric", "stipend_currency",
	"required_skills", "application_deadline", "apply_link",
	"source_platform", "date_scraped", "is_new",
	"org_type", "role_type", "match_score",
}

// legacySkillSep joined skills in datasets written before the column held JSON.
const legacySkillSep = ", "

func encodeSkills(skills []string) string {
	if len(skills) == 0 {
		return ""
	}
	b, _ := json.Marshal(skills)
	return string(b)
}

func decodeSkills(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if strings.HasPrefix(s, "[") {
		var skills []string
		if err := json.Unmarshal([]byte(s), &skills); err == nil {
			return skills
		}
	}
	return strings.Split(s, legacySkillSep)
}

func toRecord(l domain.Listing) []string {
	return []string{
		l.ID,
		l.Organization,
		l.Title,
		l.Location,
		string(l.LocationKind),
		l.Duration,
		l.StipendText,
		strconv.FormatFloat(l.StipendNumeric, 'f', -1, 64),
		l.StipendCurrency,
		encodeSkills(l.Skills),
		l.Deadline,
		l.ApplyURL,
		l.SourceName,
		l.ScrapedAt.Format(DateLayout),
		strconv.FormatBool(l.IsNew),
		string(l.OrgKind),
		string(l.RoleKind),
		strconv.Itoa(l.MatchScore),
	}
}

func fromRecord(idx map[string]int, rec []string) domain.Listing {
	get := func(col string) string {
		if i, ok := idx[col]; ok && i < len(rec) {
			return rec[i]
		}
		return ""
	}

	var l domain.Listing
	l.ID = get("id")
	l.Organization = get("company_name")
	l.Title = get("role_title")
	l.Location = get("location")
	l.LocationKind = domain.LocationKind(get("location_type"))
	l.Duration = get("duration")
	l.StipendText = get("stipend")
	l.StipendNumeric, _ = strconv.ParseFloat(get("stipend_numeric"), 64)
	l.StipendCurrency = get("stipend_currency")
	l.Skills = decodeSkills(get("required_skills"))
	l.Deadline = get("application_deadline")
	l.ApplyURL = get("apply_link")
	l.SourceName = get("source_platform")
	l.ScrapedAt, _ = time.Parse(DateLayout, get("date_scraped"))
	l.IsNew, _ = strconv.ParseBool(get("is_new"))
	l.OrgKind = domain.OrgKind(get("org_type"))
	l.RoleKind = domain.RoleKind(get("role_type"))
	l.MatchScore, _ = strconv.Atoi(get("match_score"))
	return l
}

func encodeCSV(rows []domain.Listing) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(Columns); err != nil {
		return nil, err
	}
	for _, r := range rows {
		if err := w.Write(toRecord(r)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func decodeCSV(r io.Reader) ([]domain.Listing, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read dataset header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	if _, ok := idx["id"]; !ok {
		return nil, errors.New("dataset has no id column")
	}

	var out []domain.Listing
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read dataset row: %w", err)
		}
		out = append(out, fromRecord(idx, rec))
	}
	return out, nil
}
