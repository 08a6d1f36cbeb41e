package validator

import (
	"bufio"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/nellaby/tableguard/pkg/schema"
	"github.com/nellaby/tableguard/pkg/table"
)

// Date layouts accepted by the date type check, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
}

// checkColumn runs the per-column rules against a column known to be
// present in the table. The returned error indicates a schema-authoring
// fault, not a data problem.
func checkColumn(tbl *table.Table, rule schema.ColumnRule) (Violations, error) {
	var v Violations
	values := tbl.Column(rule.Name)

	if rule.Required {
		nulls := 0
		for _, val := range values {
			if table.IsNull(val) {
				nulls++
			}
		}
		if nulls > 0 {
			v.Addf("%s: %d required values are null", rule.Name, nulls)
		}
	}

	if rule.Type != "" {
		bad, err := countTypeFailures(values, rule.Type)
		if err != nil {
			return nil, err
		}
		if bad > 0 {
			v.Addf("%s: %d rows fail type '%s'", rule.Name, bad, rule.Type)
		}
	}

	if rule.Pattern != "" {
		// Anchored at the start of the value, matching anywhere after that.
		re, err := regexp.Compile("^(?:" + rule.Pattern + ")")
		if err != nil {
			return nil, errors.Wrapf(err, "column %q has invalid pattern %q", rule.Name, rule.Pattern)
		}
		bad := 0
		for _, val := range values {
			if table.IsNull(val) {
				continue
			}
			if !re.MatchString(val) {
				bad++
			}
		}
		if bad > 0 {
			v.Addf("%s: %d rows fail regex '%s'", rule.Name, bad, rule.Pattern)
		}
	}

	v.Merge(checkAllowedValues(values, rule))
	v.Merge(checkNumericRange(values, rule))

	return v, nil
}

// checkAllowedValues enforces membership in the union of the inline set
// and the newline-delimited external file.
func checkAllowedValues(values []string, rule schema.ColumnRule) Violations {
	var v Violations
	if len(rule.AllowedValues) == 0 && rule.AllowedValuesFile == "" {
		return v
	}

	allowed := make(map[string]bool, len(rule.AllowedValues))
	for _, a := range rule.AllowedValues {
		allowed[a] = true
	}
	if rule.AllowedValuesFile != "" {
		fromFile, err := readAllowedValuesFile(rule.AllowedValuesFile)
		if err != nil {
			// The check fails closed rather than passing values it
			// could not verify.
			v.Addf("%s: failed to read allowed_values_file=%s: %v", rule.Name, rule.AllowedValuesFile, err)
			return v
		}
		for a := range fromFile {
			allowed[a] = true
		}
	}

	bad := 0
	for _, val := range values {
		if table.IsNull(val) {
			continue
		}
		if !allowed[val] {
			bad++
		}
	}
	if bad > 0 {
		v.Addf("%s: %d rows not in allowed values", rule.Name, bad)
	}
	return v
}

func readAllowedValuesFile(path string) (map[string]bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	allowed := make(map[string]bool)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			allowed[line] = true
		}
	}
	return allowed, scanner.Err()
}

// checkNumericRange bounds int/float columns. Values that fail numeric
// parsing are skipped here; the type check already counts them.
func checkNumericRange(values []string, rule schema.ColumnRule) Violations {
	var v Violations
	if rule.Type != schema.TypeInt && rule.Type != schema.TypeFloat {
		return v
	}
	if rule.Min == nil && rule.Max == nil {
		return v
	}

	below, above := 0, 0
	for _, val := range values {
		if table.IsNull(val) {
			continue
		}
		n, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			continue
		}
		if rule.Min != nil && n < *rule.Min {
			below++
		}
		if rule.Max != nil && n > *rule.Max {
			above++
		}
	}
	if below > 0 {
		v.Addf("%s: %d values < %v", rule.Name, below, *rule.Min)
	}
	if above > 0 {
		v.Addf("%s: %d values > %v", rule.Name, above, *rule.Max)
	}
	return v
}

func countTypeFailures(values []string, typ string) (int, error) {
	bad := 0
	for _, val := range values {
		if table.IsNull(val) {
			// Nulls are the business of the required check.
			continue
		}
		ok, err := convertible(val, typ)
		if err != nil {
			return 0, err
		}
		if !ok {
			bad++
		}
	}
	return bad, nil
}

func convertible(val, typ string) (bool, error) {
	s := strings.TrimSpace(val)
	switch typ {
	case schema.TypeStr:
		return true, nil
	case schema.TypeInt:
		if _, err := strconv.ParseInt(s, 10, 64); err == nil {
			return true, nil
		}
		// Integral float forms ("3.0") count as ints; upstream tooling
		// widens int columns to float when nulls are present.
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f == math.Trunc(f) && !math.IsInf(f, 0) && !math.IsNaN(f), nil
		}
		return false, nil
	case schema.TypeFloat:
		_, err := strconv.ParseFloat(s, 64)
		return err == nil, nil
	case schema.TypeDate:
		for _, layout := range dateLayouts {
			if _, err := time.Parse(layout, s); err == nil {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, errors.Errorf("unknown type: %s", typ)
	}
}
