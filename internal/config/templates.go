package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var ErrTemplateExists = errors.New("config: template target already exists")

const configTemplate = `# crsflink daemon configuration

log_level = "info"

[serial]
port = "/dev/ttyS0"
baud = 420000

[protocol]
sync_byte = 200        # 0xC8
max_buffer = 64
link_timeout = "1s"
# decode_types = ["rc_channels", "link_statistics"]

[http]
addr = ":9870"

[mqtt]
enabled = false
broker = "tcp://localhost:1883"
client_id = "crsflink"
topic_prefix = "crsflink"

[telemetry]
battery_enabled = false
interval = "1s"
voltage = 11.8
current = 0.0
consumed_mah = 0
remaining_percent = 100
`

// WriteTemplate writes the commented starter config. It refuses to clobber
// an existing file unless force is set.
func WriteTemplate(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrTemplateExists, path)
		}
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config template dir: %w", err)
		}
	}
	return os.WriteFile(path, []byte(configTemplate), 0o644)
}
