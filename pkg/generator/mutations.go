// SPDX-License-Identifier: Apache-2.0

package generator

import (
	"fmt"
	"math/rand"
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pgmask/pgmask/pkg/directive"
)

// uuid5Namespace is a fixed namespace UUID so mutation_uuid5 is
// deterministic given the same (source column value, run date) pair
// within a run: it derives a UUIDv5 from another column's
// already-obfuscated value plus today's date.
var uuid5Namespace = uuid.MustParse("8f4a1b6e-8f2a-4e9a-9d2c-3f6b2a7c9e10")

func registerBuiltins(r *Registry) {
	r.Register("email", mutationEmail)
	r.Register("full_name", mutationFullName)
	r.Register("first_name", mutationFirstName)
	r.Register("middle_name", mutationMiddleName)
	r.Register("last_name", mutationLastName)
	r.Register("address", mutationAddress)
	r.Register("past_date", mutationPastDate)
	r.Register("future_date", mutationFutureDate)
	r.Register("uri", mutationURI)
	r.Register("ipv4_public", mutationIPv4Public)
	r.Register("ipv4_private", mutationIPv4Private)
	r.Register("ipv6", mutationIPv6)
	r.Register("phone_number", mutationPhoneNumber)
	r.Register("fixed_value", mutationFixedValue)
	r.Register("empty_string", mutationEmptyString)
	r.Register("null", mutationNull)
	r.Register("integer", mutationInteger)
	r.Register("decimal", mutationDecimal)
	r.Register("real", mutationReal)
	r.Register("random_choice", mutationRandomChoice)
	r.Register("uuid4", mutationUUID4)
	r.Register("uuid5", mutationUUID5)
}

func mutationEmail(_ directive.Kwargs, _ map[string]string) (string, error) {
	return fmt.Sprintf("%s.%d@%s", randomWord(firstNames), rand.Intn(10000), randomWord(emailDomains)), nil
}

func mutationFullName(_ directive.Kwargs, _ map[string]string) (string, error) {
	return randomWord(firstNames) + " " + randomWord(lastNames), nil
}

func mutationFirstName(_ directive.Kwargs, _ map[string]string) (string, error) {
	return randomWord(firstNames), nil
}

func mutationMiddleName(_ directive.Kwargs, _ map[string]string) (string, error) {
	return randomWord(middleNames), nil
}

func mutationLastName(_ directive.Kwargs, _ map[string]string) (string, error) {
	return randomWord(lastNames), nil
}

func mutationAddress(_ directive.Kwargs, _ map[string]string) (string, error) {
	return fmt.Sprintf("%d %s %s", rand.Intn(9000)+1, randomWord(streetNames), randomWord(streetSuffixes)), nil
}

func mutationPastDate(kwargs directive.Kwargs, _ map[string]string) (string, error) {
	startDate := stringArg(kwargs, "start_date", "-30d")
	layout := stringArg(kwargs, "date_format", "2006-01-02")

	offset, err := parseOffset(startDate)
	if err != nil {
		return "", err
	}

	earliest := time.Now().Add(offset)
	span := time.Since(earliest)
	if span <= 0 {
		return earliest.Format(layout), nil
	}

	result := earliest.Add(time.Duration(rand.Int63n(int64(span))))
	return result.Format(layout), nil
}

func mutationFutureDate(kwargs directive.Kwargs, _ map[string]string) (string, error) {
	endDate := stringArg(kwargs, "end_date", "+30d")
	layout := stringArg(kwargs, "date_format", "2006-01-02")

	offset, err := parseOffset(endDate)
	if err != nil {
		return "", err
	}

	latest := time.Now().Add(offset)
	span := time.Until(latest)
	if span <= 0 {
		return latest.Format(layout), nil
	}

	result := time.Now().Add(time.Duration(rand.Int63n(int64(span))))
	return result.Format(layout), nil
}

func mutationURI(kwargs directive.Kwargs, _ map[string]string) (string, error) {
	maxLength := intArg(kwargs, "max_length", 2048)
	uri := fmt.Sprintf("https://%s/%s", randomWord(streetNames), randomWord(firstNames))
	if len(uri) > maxLength {
		uri = uri[:maxLength]
	}
	return uri, nil
}

func mutationIPv4Public(_ directive.Kwargs, _ map[string]string) (string, error) {
	for {
		ip := net.IPv4(byte(1+rand.Intn(223)), byte(rand.Intn(256)), byte(rand.Intn(256)), byte(1+rand.Intn(254)))
		if !isPrivateIPv4(ip) {
			return ip.String(), nil
		}
	}
}

func mutationIPv4Private(_ directive.Kwargs, _ map[string]string) (string, error) {
	return fmt.Sprintf("10.%d.%d.%d", rand.Intn(256), rand.Intn(256), 1+rand.Intn(254)), nil
}

func mutationIPv6(_ directive.Kwargs, _ map[string]string) (string, error) {
	groups := make([]string, 8)
	for i := range groups {
		groups[i] = fmt.Sprintf("%04x", rand.Intn(1<<16))
	}
	return strings.Join(groups, ":"), nil
}

func mutationPhoneNumber(kwargs directive.Kwargs, _ map[string]string) (string, error) {
	format, ok := kwargs.Raw["format"].(string)
	if !ok || format == "" {
		return "", fmt.Errorf("phone_number: missing required kwarg %q", "format")
	}

	var b strings.Builder
	for _, r := range format {
		if r == 'X' {
			b.WriteByte(byte('0' + rand.Intn(10)))
			continue
		}
		b.WriteRune(r)
	}
	return b.String(), nil
}

func mutationFixedValue(kwargs directive.Kwargs, _ map[string]string) (string, error) {
	if !kwargs.Value.IsSpecified() {
		return "", fmt.Errorf("fixed_value: missing required kwarg %q", "value")
	}
	if kwargs.Value.IsNull() {
		return `\N`, nil
	}

	v, _ := kwargs.Value.Get()
	return v, nil
}

func mutationEmptyString(_ directive.Kwargs, _ map[string]string) (string, error) {
	return "", nil
}

func mutationNull(_ directive.Kwargs, _ map[string]string) (string, error) {
	return `\N`, nil
}

func mutationInteger(kwargs directive.Kwargs, _ map[string]string) (string, error) {
	min := intArg(kwargs, "min", -2147483648)
	max := intArg(kwargs, "max", 2147483647)
	if max < min {
		return "", fmt.Errorf("integer: max (%d) is less than min (%d)", max, min)
	}
	return strconv.FormatInt(int64(min)+rand.Int63n(int64(max)-int64(min)+1), 10), nil
}

func mutationDecimal(kwargs directive.Kwargs, _ map[string]string) (string, error) {
	min := intArg(kwargs, "min", 0)
	max := intArg(kwargs, "max", 1000000)
	scale := int32(intArg(kwargs, "scale", 2))
	if max < min {
		return "", fmt.Errorf("decimal: max (%d) is less than min (%d)", max, min)
	}

	whole := decimal.NewFromInt(int64(min) + rand.Int63n(int64(max)-int64(min)+1))
	frac := decimal.New(rand.Int63n(pow10(scale)), -scale)
	return whole.Add(frac).StringFixed(scale), nil
}

func mutationReal(kwargs directive.Kwargs, row map[string]string) (string, error) {
	return mutationDecimal(kwargs, row)
}

func mutationRandomChoice(kwargs directive.Kwargs, _ map[string]string) (string, error) {
	choices := stringSliceArg(kwargs)
	if len(choices) == 0 {
		return "", fmt.Errorf("random_choice: missing required non-empty kwarg %q", "choices")
	}
	return choices[rand.Intn(len(choices))], nil
}

func mutationUUID4(_ directive.Kwargs, _ map[string]string) (string, error) {
	return uuid.New().String(), nil
}

func mutationUUID5(kwargs directive.Kwargs, row map[string]string) (string, error) {
	sourceColumn, ok := kwargs.Raw["source_column"].(string)
	if !ok || sourceColumn == "" {
		return "", fmt.Errorf("uuid5: missing required kwarg %q", "source_column")
	}

	sourceValue := row[sourceColumn]
	name := sourceValue + "|" + time.Now().Format("2006-01-02")
	return uuid.NewSHA1(uuid5Namespace, []byte(name)).String(), nil
}

func stringArg(kwargs directive.Kwargs, key, def string) string {
	if v, ok := kwargs.Raw[key].(string); ok && v != "" {
		return v
	}
	return def
}

func intArg(kwargs directive.Kwargs, key string, def int) int {
	v, ok := kwargs.Raw[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return def
	}
}

func stringSliceArg(kwargs directive.Kwargs) []string {
	if kwargs.Choices.IsSpecified() && !kwargs.Choices.IsNull() {
		v, _ := kwargs.Choices.Get()
		return v
	}

	raw, ok := kwargs.Raw["choices"].([]any)
	if !ok {
		return nil
	}

	out := make([]string, 0, len(raw))
	for _, item := range raw {
		out = append(out, fmt.Sprintf("%v", item))
	}
	return out
}

func pow10(n int32) int64 {
	result := int64(1)
	for i := int32(0); i < n; i++ {
		result *= 10
	}
	return result
}

func isPrivateIPv4(ip net.IP) bool {
	for _, cidr := range []string{"10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16", "127.0.0.0/8"} {
		_, block, _ := net.ParseCIDR(cidr)
		if block.Contains(ip) {
			return true
		}
	}
	return false
}

var offsetPattern = regexp.MustCompile(`^([+-]?\d+)([ywdhms])$`)

// parseOffset parses a small subset of the original pg_stage period
// syntax ("-30d", "+2w", "+3h"): a signed integer followed by a single
// unit letter (y years, w weeks, d days, h hours, m minutes, s seconds).
func parseOffset(value string) (time.Duration, error) {
	m := offsetPattern.FindStringSubmatch(strings.TrimSpace(value))
	if m == nil {
		return 0, fmt.Errorf("could not parse date offset %q", value)
	}

	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("could not parse date offset %q: %w", value, err)
	}

	switch m[2] {
	case "y":
		return time.Duration(n) * 365 * 24 * time.Hour, nil
	case "w":
		return time.Duration(n) * 7 * 24 * time.Hour, nil
	case "d":
		return time.Duration(n) * 24 * time.Hour, nil
	case "h":
		return time.Duration(n) * time.Hour, nil
	case "m":
		return time.Duration(n) * time.Minute, nil
	case "s":
		return time.Duration(n) * time.Second, nil
	default:
		return 0, fmt.Errorf("unknown date offset unit in %q", value)
	}
}

func randomWord(words []string) string {
	return words[rand.Intn(len(words))]
}
