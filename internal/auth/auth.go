// Package auth loads browser session data exported as "copy as cURL" text or
// as a plain "Key: value" header file.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mattn/go-shellwords"

	"github.com/haryoiro/ytmgrab/internal/logger"
)

// ErrParse is returned when a capture cannot be turned into Data.
var ErrParse = errors.New("auth: cannot parse session capture")

const (
	DefaultUserAgent     = "Mozilla/5.0 (X11; Linux x86_64; rv:108.0) Gecko/20100101 Firefox/108.0"
	DefaultClientName    = "WEB_REMIX"
	DefaultClientVersion = "1.20240101.01.00"
)

// Data is what the transport needs to replay a browser session.
type Data struct {
	Headers map[string]string
	Params  map[string]string
	Body    map[string]any
}

// Header looks a header up case-insensitively.
func (d Data) Header(name string) (string, bool) {
	for k, v := range d.Headers {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}

// SAPISID returns the cookie used to sign requests, or "".
func (d Data) SAPISID() string {
	cookies, ok := d.Header("Cookie")
	if !ok {
		return ""
	}

	var fallback string
	for _, part := range strings.Split(cookies, ";") {
		name, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch name {
		case "SAPISID":
			return value
		case "__Secure-3PAPISID":
			fallback = value
		}
	}
	return fallback
}

// LoadFile reads a capture file in either supported format.
func LoadFile(path string) (Data, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Data{}, err
	}

	var data Data
	if looksLikeCurl(string(content)) {
		data, err = Parse(string(content))
	} else {
		data, err = ParseHeaders(string(content))
	}
	if err != nil {
		return Data{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return data, nil
}

// LoadHeaderFile reads a "Key: value" header file.
func LoadHeaderFile(path string) (Data, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Data{}, err
	}
	data, err := ParseHeaders(string(content))
	if err != nil {
		return Data{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return data, nil
}

// LoadDir loads every parsable capture in dir keyed by file name. Files that
// fail to parse are skipped.
func LoadDir(dir string) (map[string]Data, error) {
	entries, err := os.ReadDir(filepath.FromSlash(strings.ReplaceAll(dir, `\`, "/")))
	if err != nil {
		return nil, err
	}

	out := make(map[string]Data)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := LoadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			logger.Debug("Skipping auth file %s: %v", entry.Name(), err)
			continue
		}
		out[entry.Name()] = data
	}
	return out, nil
}

// Names returns the keys of a LoadDir result in sorted order.
func Names(files map[string]Data) []string {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Parse reads "copy as cURL" text in bash or cmd flavour.
func Parse(text string) (Data, error) {
	args, err := shellwords.Parse(normalizeCurl(text))
	if err != nil {
		return Data{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if len(args) == 0 || args[0] != "curl" {
		return Data{}, fmt.Errorf("%w: not a curl command", ErrParse)
	}

	data := Data{
		Headers: make(map[string]string),
		Params:  make(map[string]string),
	}

	var rawURL, rawBody string
	for i := 1; i < len(args); i++ {
		arg := args[i]
		next := func() (string, error) {
			if i+1 >= len(args) {
				return "", fmt.Errorf("%w: %s without value", ErrParse, arg)
			}
			i++
			return args[i], nil
		}

		switch arg {
		case "-H", "--header":
			v, err := next()
			if err != nil {
				return Data{}, err
			}
			if key, value, ok := strings.Cut(v, ": "); ok {
				data.Headers[key] = value
			}
		case "-b", "--cookie":
			v, err := next()
			if err != nil {
				return Data{}, err
			}
			data.Headers["Cookie"] = v
		case "-A", "--user-agent":
			v, err := next()
			if err != nil {
				return Data{}, err
			}
			data.Headers["User-Agent"] = v
		case "-d", "--data", "--data-raw", "--data-binary":
			v, err := next()
			if err != nil {
				return Data{}, err
			}
			rawBody = v
		case "-X", "--request", "--url":
			v, err := next()
			if err != nil {
				return Data{}, err
			}
			if arg == "--url" {
				rawURL = v
			}
		default:
			if !strings.HasPrefix(arg, "-") && rawURL == "" {
				rawURL = arg
			}
		}
	}

	if rawURL == "" {
		return Data{}, fmt.Errorf("%w: no url", ErrParse)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return Data{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	for key, values := range u.Query() {
		data.Params[key] = values[0]
	}

	if rawBody == "" {
		return Data{}, fmt.Errorf("%w: no request body", ErrParse)
	}
	if err := json.Unmarshal([]byte(rawBody), &data.Body); err != nil {
		return Data{}, fmt.Errorf("%w: body: %v", ErrParse, err)
	}
	if data.Body == nil {
		return Data{}, fmt.Errorf("%w: body is not an object", ErrParse)
	}
	delete(data.Body, "browseId")

	return data, nil
}

// ParseHeaders reads "Key: value" lines. A minimal WEB_REMIX context is
// supplied as the body since the file carries none.
func ParseHeaders(text string) (Data, error) {
	headers := make(map[string]string)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, ": ")
		if !ok {
			continue
		}
		headers[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	data := Data{
		Headers: headers,
		Params:  map[string]string{"prettyPrint": "false"},
		Body: map[string]any{
			"context": map[string]any{
				"client": map[string]any{
					"clientName":    DefaultClientName,
					"clientVersion": DefaultClientVersion,
				},
			},
		},
	}

	if _, ok := data.Header("Cookie"); !ok {
		return Data{}, fmt.Errorf("%w: no Cookie header found", ErrParse)
	}
	if _, ok := data.Header("User-Agent"); !ok {
		data.Headers["User-Agent"] = DefaultUserAgent
	}
	return data, nil
}

func looksLikeCurl(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), "curl ")
}

// normalizeCurl folds line continuations and strips cmd.exe caret escapes.
func normalizeCurl(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if strings.Contains(text, "^\"") || strings.Contains(text, "^\n") {
		text = strings.ReplaceAll(text, "^\n", " ")
		var b strings.Builder
		escaped := false
		for _, r := range text {
			if r == '^' && !escaped {
				escaped = true
				continue
			}
			escaped = false
			b.WriteRune(r)
		}
		text = b.String()
	}
	text = strings.ReplaceAll(text, "\\\n", " ")
	// bash ANSI-C quoting, emitted for bodies with non-ASCII text
	return strings.ReplaceAll(text, " $'", " '")
}
