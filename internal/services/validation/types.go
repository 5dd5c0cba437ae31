package validation

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"fileflow-backend/internal/models"
)

const (
	phoneColumn = "contact_no"
	dobColumn   = "datetime"
	emailColumn = "email"

	phoneDigits = 10
	dobLayout   = "01-02-2006"
)

var (
	// emailPart excludes Unicode whitespace, not only ASCII \s.
	emailPart  = `[^@\s\v\p{Z}\x{1c}-\x{1f}\x{85}]+`
	emailRegex = regexp.MustCompile(`^` + emailPart + `@` + emailPart + `\.` + emailPart + `$`)
	nonDigit   = regexp.MustCompile(`\D`)
	floatLike  = regexp.MustCompile(`^[+-]?(\d+\.\d*|\.\d+|\d+(\.\d*)?[eE][+-]?\d+)$`)
)

// TypeErrorKinds is the order kinds are reported and persisted in.
var TypeErrorKinds = []string{models.ErrorTypePhone, models.ErrorTypeDOB, models.ErrorTypeEmail}

type TypeRow struct {
	Row    int     `json:"row"`
	Column string  `json:"column"`
	Value  string  `json:"value"`
	Data   RowData `json:"data"`
}

type TypeResult struct {
	Status string
	Errors map[string][]TypeRow
}

// ValidateDataTypes checks phone, date of birth and email on every non-blank
// row. A row can collect one error per kind.
func ValidateDataTypes(table *Table) TypeResult {
	errs := make(map[string][]TypeRow)
	for _, row := range table.Rows {
		if row.IsBlank() {
			continue
		}
		if v, ok := row.Value(phoneColumn); ok && strings.TrimSpace(v) != "" {
			if !ValidPhone(v) {
				errs[models.ErrorTypePhone] = append(errs[models.ErrorTypePhone], typeRow(row, phoneColumn, v))
			}
		}
		if v, ok := row.Value(dobColumn); ok && strings.TrimSpace(v) != "" {
			if !ValidDOB(v) {
				errs[models.ErrorTypeDOB] = append(errs[models.ErrorTypeDOB], typeRow(row, dobColumn, v))
			}
		}
		if v, ok := row.Value(emailColumn); ok {
			if email := cleanText(v); email != "" && !emailRegex.MatchString(email) {
				errs[models.ErrorTypeEmail] = append(errs[models.ErrorTypeEmail], typeRow(row, emailColumn, v))
			}
		}
	}
	if len(errs) > 0 {
		return TypeResult{Status: StatusFailed, Errors: errs}
	}
	return TypeResult{Status: StatusSuccess, Errors: errs}
}

func typeRow(row Row, column, value string) TypeRow {
	return TypeRow{Row: row.Number(), Column: column, Value: value, Data: row.Data()}
}

// NormalizePhone keeps only digits. Spreadsheet exports often turn phone
// numbers into floats, so "1234567890.0" is read back as an integer first.
func NormalizePhone(raw string) string {
	s := strings.TrimSpace(raw)
	if floatLike.MatchString(s) {
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && math.Abs(f) < 1e18 {
			s = strconv.FormatInt(int64(f), 10)
		}
	}
	return nonDigit.ReplaceAllString(s, "")
}

func ValidPhone(raw string) bool {
	return len(NormalizePhone(raw)) == phoneDigits
}

// ValidDOB accepts MM-DD-YYYY only, with a real calendar date.
func ValidDOB(raw string) bool {
	_, err := time.Parse(dobLayout, cleanText(raw))
	return err == nil
}

func ValidEmail(raw string) bool {
	return emailRegex.MatchString(cleanText(raw))
}

func cleanText(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, zeroWidthSpace, ""))
}
