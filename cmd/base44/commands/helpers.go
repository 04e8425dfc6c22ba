package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/base44-client/pkg/base44"
	"github.com/fivetwenty-io/base44-client/pkg/base44client"
)

// Output formats.
const (
	OutputFormatJSON  = "json"
	OutputFormatYAML  = "yaml"
	OutputFormatTable = "table"
)

// Common static errors used throughout the commands package.
var (
	ErrAppIDRequired = errors.New("app ID is required (set --app-id, BASE44_APP_ID, or app_id in the config file)")
	ErrTokenRequired = errors.New("no token provided")
)

// tokenStorage picks the best available persistence backend: the system
// keychain when it works, a file under the config directory otherwise.
func tokenStorage() base44.Storage {
	if os.Getenv("BASE44_NO_KEYRING") == "" && base44client.KeyringAvailable() {
		return base44client.NewKeyringStorage()
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return base44client.NewMemoryStorage()
	}

	return base44client.NewFileStorage(filepath.Join(home, ".base44"))
}

// createClient builds a client from viper-resolved configuration.
func createClient() (base44.Client, error) {
	appID := viper.GetString("app_id")
	if appID == "" {
		return nil, ErrAppIDRequired
	}

	return base44client.New(&base44.Config{
		AppID:       appID,
		ServerURL:   viper.GetString("server_url"),
		Environment: viper.GetString("env"),
		Token:       viper.GetString("token"),
		Debug:       viper.GetBool("debug"),
		RetryMax:    viper.GetInt("retries"),
		Storage:     tokenStorage(),
		Logger:      stderrLogger{},
	})
}

// stderrLogger writes structured SDK logs to stderr.
type stderrLogger struct{}

func (stderrLogger) log(level, msg string, fields map[string]interface{}) {
	if len(fields) == 0 {
		fmt.Fprintf(os.Stderr, "[%s] %s\n", level, msg)

		return
	}

	fmt.Fprintf(os.Stderr, "[%s] %s %v\n", level, msg, fields)
}

func (l stderrLogger) Debug(msg string, fields map[string]interface{}) { l.log("debug", msg, fields) }
func (l stderrLogger) Info(msg string, fields map[string]interface{})  { l.log("info", msg, fields) }
func (l stderrLogger) Warn(msg string, fields map[string]interface{})  { l.log("warn", msg, fields) }
func (l stderrLogger) Error(msg string, fields map[string]interface{}) { l.log("error", msg, fields) }

// renderValue prints any value in the configured output format; the table
// format falls back to indented JSON for non-tabular values.
func renderValue(value interface{}) error {
	switch viper.GetString("output") {
	case OutputFormatYAML:
		encoder := yaml.NewEncoder(os.Stdout)

		return encoder.Encode(value)
	default:
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		return encoder.Encode(value)
	}
}

// renderEntities prints records as a table (or json/yaml per --output).
func renderEntities(records []base44.Entity) error {
	output := viper.GetString("output")
	if output == OutputFormatJSON || output == OutputFormatYAML {
		return renderValue(records)
	}

	if len(records) == 0 {
		fmt.Println("No records found")

		return nil
	}

	columns := entityColumns(records)

	table := tablewriter.NewWriter(os.Stdout)

	header := make([]interface{}, 0, len(columns))
	for _, col := range columns {
		header = append(header, col)
	}

	table.Header(header...)

	for _, record := range records {
		row := make([]string, 0, len(columns))
		for _, col := range columns {
			row = append(row, cellValue(record[col]))
		}

		_ = table.Append(row)
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// entityColumns picks a stable column order: id first, then the remaining
// keys of the first record alphabetically.
func entityColumns(records []base44.Entity) []string {
	keys := make([]string, 0, len(records[0]))

	for key := range records[0] {
		if key != "id" {
			keys = append(keys, key)
		}
	}

	sort.Strings(keys)

	return append([]string{"id"}, keys...)
}

func cellValue(value interface{}) string {
	switch val := value.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64, bool, int:
		return fmt.Sprintf("%v", val)
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}

		return string(data)
	}
}

// parseJSONFlag decodes a --data / --query style JSON argument.
func parseJSONFlag(raw string, target interface{}) error {
	if raw == "" {
		return nil
	}

	if err := json.Unmarshal([]byte(raw), target); err != nil {
		return fmt.Errorf("invalid JSON argument: %w", err)
	}

	return nil
}
