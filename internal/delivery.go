package internal

import (
	"bufio"
	"os"
	"strings"

	"github.com/avdeev/ordertrack/internal/model"
)

// ReadDeliverySettings loads the tab-separated settings file. It is read on
// every request; there is no caching. Blank lines and lines with fewer than
// three columns are skipped.
func ReadDeliverySettings(path string) ([]model.DeliverySetting, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	settings := []model.DeliverySetting{}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		cols := strings.Split(line, "\t")
		if len(cols) < 3 {
			continue
		}

		settings = append(settings, model.DeliverySetting{
			ID:           cols[0],
			SettingName:  cols[1],
			SettingValue: cols[2],
		})
	}
	return settings, scanner.Err()
}
