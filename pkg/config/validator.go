package config

import (
	"fmt"
	"net/url"

	"github.com/robfig/cron/v3"
)

// ValidateConfig validates the complete configuration
func (c *Config) ValidateConfig() error {
	if err := c.validateAppleConfig(); err != nil {
		return fmt.Errorf("%w: %w", ErrAppleConfig, err)
	}

	if err := c.validateCatalog(); err != nil {
		return fmt.Errorf("%w: %w", ErrCatalogConfig, err)
	}

	if c.Telegram != nil {
		if err := c.Telegram.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrTelegramConfig, err)
		}
	}

	if c.WeCom != nil {
		if err := c.WeCom.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrWeComConfig, err)
		}
	}

	if err := c.validateWatchConfig(); err != nil {
		return fmt.Errorf("%w: %w", ErrWatchConfig, err)
	}

	if c.Server != nil {
		if err := c.Server.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrServerConfig, err)
		}
	}

	return nil
}

func (c *Config) validateAppleConfig() error {
	if c.Apple == nil {
		return fmt.Errorf("%w: apple section", ErrMissingRequired)
	}

	ac := c.Apple

	// A static cookie makes the handshake endpoints unnecessary
	if ac.Cookie == "" {
		if err := validateURL("cookie_url", ac.CookieURL); err != nil {
			return err
		}
		if err := validateURL("verification_url", ac.VerificationURL); err != nil {
			return err
		}
	}

	if ac.UserAgent == "" {
		return fmt.Errorf("%w: user_agent", ErrMissingRequired)
	}

	if ac.StepDelayMs < 0 {
		return fmt.Errorf("%w: step_delay_ms cannot be negative", ErrInvalidValue)
	}

	if ac.RequestTimeout <= 0 {
		ac.RequestTimeout = 30
	}

	return nil
}

func (c *Config) validateCatalog() error {
	if len(c.Countries) == 0 {
		return fmt.Errorf("%w: countries", ErrMissingRequired)
	}

	indexes := make(map[string]string, len(c.Countries))
	for name, country := range c.Countries {
		if country == nil {
			return fmt.Errorf("%w: country %s is empty", ErrMissingRequired, name)
		}
		if len(name) < 3 {
			return fmt.Errorf("%w: country name %q must have at least 3 characters", ErrInvalidValue, name)
		}
		if country.Index != "" {
			if other, ok := indexes[country.Index]; ok {
				return fmt.Errorf("%w: countries %s and %s share index %s", ErrInvalidValue, other, name, country.Index)
			}
			indexes[country.Index] = name
		}
		if err := validateURL(name+".fulfillment_url", country.FulfillmentURL); err != nil {
			return err
		}
		if len(country.Models) == 0 {
			return fmt.Errorf("%w: %s.models", ErrMissingRequired, name)
		}
		for key, model := range country.Models {
			if model.Code == "" {
				return fmt.Errorf("%w: %s.models.%s.code", ErrMissingRequired, name, key)
			}
		}
		for key, zip := range country.ZipCodes {
			if zip.Code == "" {
				return fmt.Errorf("%w: %s.zip_codes.%s.code", ErrMissingRequired, name, key)
			}
		}
	}

	return nil
}

func (c *Config) validateWatchConfig() error {
	if c.Watch == nil {
		return nil
	}

	if c.Watch.Schedule != "" {
		if _, err := cron.ParseStandard(c.Watch.Schedule); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidCron, c.Watch.Schedule, err)
		}
	}

	if c.Watch.CheckTimeout <= 0 {
		c.Watch.CheckTimeout = 120
	}

	return nil
}

func validateURL(field, raw string) error {
	if raw == "" {
		return fmt.Errorf("%w: %s", ErrMissingRequired, field)
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %s must be an absolute URL", ErrInvalidValue, field)
	}
	return nil
}
