package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"marketmind/internal/trending"
)

// YAMLConfig represents the structure of the config.yaml file.
// Ranking weights are easier to tune in a file than in env vars.
type YAMLConfig struct {
	Trending *trending.Policy `yaml:"trending"`
}

// LoadYAMLConfig loads the YAML configuration file.
// Path is determined by CONFIG_FILE env var, defaulting to "config.yaml".
// Returns nil without error if the config file doesn't exist.
func LoadYAMLConfig() (*YAMLConfig, error) {
	path := getEnv("CONFIG_FILE", "config.yaml")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Config file is optional
			return nil, nil
		}
		return nil, err
	}

	return parseYAMLConfig(data)
}

func parseYAMLConfig(data []byte) (*YAMLConfig, error) {
	var cfg YAMLConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return &cfg, nil
}

// TrendingPolicy builds the ranking policy. Defaults are overlaid first by the
// YAML file (fields it leaves unset keep their default), then by TRENDING_*
// env vars. The result is validated.
func TrendingPolicy(yc *YAMLConfig) (trending.Policy, error) {
	policy := trending.DefaultPolicy()

	if yc != nil && yc.Trending != nil {
		overlayPolicy(&policy, *yc.Trending)
	}

	floats := []struct {
		key string
		dst *float64
	}{
		{"TRENDING_WEIGHT_VIEWS", &policy.WeightViews},
		{"TRENDING_WEIGHT_RATING", &policy.WeightRating},
		{"TRENDING_WEIGHT_RECENCY", &policy.WeightRecency},
		{"TRENDING_WEIGHT_REVIEWS", &policy.WeightReviews},
	}
	for _, f := range floats {
		v, ok, err := lookupEnvFloat(f.key)
		if err != nil {
			return policy, fmt.Errorf("invalid %s: %w", f.key, err)
		}
		if ok {
			*f.dst = v
		}
	}

	if v := os.Getenv("TRENDING_RECENCY_WINDOW"); v != "" {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return policy, fmt.Errorf("invalid TRENDING_RECENCY_WINDOW: %w", err)
		}
		policy.RecencyWindow = d
	}
	if v := os.Getenv("TRENDING_PAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return policy, fmt.Errorf("invalid TRENDING_PAGE_SIZE: %w", err)
		}
		policy.PageSize = n
	}

	if err := policy.Validate(); err != nil {
		return policy, err
	}
	return policy, nil
}

// overlayPolicy copies the non-zero fields of src onto dst. Weights are
// copied as a set when any of them is present.
func overlayPolicy(dst *trending.Policy, src trending.Policy) {
	if src.WeightViews != 0 || src.WeightRating != 0 || src.WeightRecency != 0 || src.WeightReviews != 0 {
		dst.WeightViews = src.WeightViews
		dst.WeightRating = src.WeightRating
		dst.WeightRecency = src.WeightRecency
		dst.WeightReviews = src.WeightReviews
	}
	if src.RecencyWindow != 0 {
		dst.RecencyWindow = src.RecencyWindow
	}
	if src.PageSize != 0 {
		dst.PageSize = src.PageSize
	}
}
