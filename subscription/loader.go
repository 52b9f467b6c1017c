package subscription

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

/* Loader preloads subscriptions from a YAML file at boot
 * Lets operators declare fixed destinations without calling the API
 */

// FileConfig represents the structure of subscriptions.yaml
type FileConfig struct {
	Subscriptions []FileSubscription `yaml:"subscriptions"`
}

// FileSubscription represents a single subscription in the YAML file
type FileSubscription struct {
	ID        string `yaml:"id"`
	TargetURL string `yaml:"target_url"`
	Secret    string `yaml:"secret"`
}

// LoadFile reads subscriptions.yaml, validates each entry, and stores
// them in the repository. Entries with an existing id are overwritten.
func LoadFile(ctx context.Context, filePath string, repo Repository) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("reading subscriptions file: %w", err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parsing subscriptions YAML: %w", err)
	}

	for _, fs := range cfg.Subscriptions {
		sub := Subscription{
			ID:        fs.ID,
			TargetURL: fs.TargetURL,
			Secret:    fs.Secret,
			CreatedAt: time.Now(),
		}
		if err := sub.Validate(); err != nil {
			return fmt.Errorf("validating subscription %q: %w", fs.ID, err)
		}
		if err := repo.Store(ctx, sub); err != nil {
			return fmt.Errorf("storing subscription %q: %w", fs.ID, err)
		}
	}

	return nil
}
