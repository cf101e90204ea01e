// Package creds resolves the region and credential profile the way the
// cloud control plane expects: from explicit flags, from the shared
// ~/.aws credential and config files, or falling through to instance
// credentials when nothing was supplied. This deployment mode never calls
// the real control plane; the files are still honored (and written back)
// so the tool is flag-compatible with the production one.
package creds

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/ini.v1"
)

// DefaultRegion is used whenever no region can be resolved.
const DefaultRegion = "us-east-1"

// Options are the credential flags accepted on the command line.
type Options struct {
	ProfileName     string
	AccessKey       string
	SecretAccessKey string
	SessionToken    string
	Region          string
}

// Provider resolves credentials against a pair of ini files.
type Provider struct {
	credentialsPath string
	configPath      string
}

// NewProvider resolves against the conventional ~/.aws files.
func NewProvider() *Provider {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return NewProviderWithPaths(
		filepath.Join(home, ".aws", "credentials"),
		filepath.Join(home, ".aws", "config"),
	)
}

// NewProviderWithPaths resolves against explicit file locations.
func NewProviderWithPaths(credentialsPath, configPath string) *Provider {
	return &Provider{credentialsPath: credentialsPath, configPath: configPath}
}

// Resolve validates the options and returns the effective region. With no
// profile or keys it accepts instance-profile mode. A profile present in
// the credentials file must have a matching "profile <name>" section in
// the config file, which supplies the region. Explicit keys with a profile
// name are persisted back into both files.
func (p *Provider) Resolve(opts Options) (string, error) {
	region := opts.Region
	if region == "" {
		region = DefaultRegion
	}

	if opts.AccessKey == "" && opts.SecretAccessKey == "" && opts.ProfileName == "" {
		// Instance-profile mode: nothing to load or validate locally.
		return region, nil
	}

	credentials, err := ini.LooseLoad(p.credentialsPath)
	if err != nil {
		return "", fmt.Errorf("read credentials file: %w", err)
	}
	cfg, err := ini.LooseLoad(p.configPath)
	if err != nil {
		return "", fmt.Errorf("read config file: %w", err)
	}

	_, credErr := credentials.GetSection(opts.ProfileName)
	if opts.ProfileName != "" && credErr == nil {
		section, err := cfg.GetSection("profile " + opts.ProfileName)
		if err != nil {
			return "", fmt.Errorf("please create a section for %s in your %s file",
				opts.ProfileName, p.configPath)
		}
		return section.Key("region").MustString(DefaultRegion), nil
	}

	if opts.AccessKey != "" && opts.SecretAccessKey != "" {
		if opts.ProfileName != "" {
			if err := p.storeProfile(credentials, cfg, opts, region); err != nil {
				return "", err
			}
		}
		return region, nil
	}

	return "", fmt.Errorf("unable to load credentials")
}

// storeProfile writes the explicit keys under the named profile in both
// files, removing any stale session token when none was supplied.
func (p *Provider) storeProfile(credentials, cfg *ini.File, opts Options, region string) error {
	cfgSection := cfg.Section("profile " + opts.ProfileName)
	cfgSection.Key("region").SetValue(region)

	credSection := credentials.Section(opts.ProfileName)
	credSection.Key("aws_access_key_id").SetValue(opts.AccessKey)
	credSection.Key("aws_secret_access_key").SetValue(opts.SecretAccessKey)
	if opts.SessionToken != "" {
		credSection.Key("aws_session_token").SetValue(opts.SessionToken)
	} else {
		credSection.DeleteKey("aws_session_token")
	}

	if err := os.MkdirAll(filepath.Dir(p.configPath), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := cfg.SaveTo(p.configPath); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	if err := credentials.SaveTo(p.credentialsPath); err != nil {
		return fmt.Errorf("write credentials file: %w", err)
	}
	return nil
}
