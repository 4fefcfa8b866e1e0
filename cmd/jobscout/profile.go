package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/amishk599/jobscout/internal/model"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage the local user profile",
}

var profileImportCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Import a profile from YAML, replacing the stored one",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileImport,
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored profile as YAML",
	RunE:  runProfileShow,
}

func init() {
	profileCmd.AddCommand(profileImportCmd, profileShowCmd)
	rootCmd.AddCommand(profileCmd)
}

// readProfileFile parses and sanity-checks a profile YAML file.
func readProfileFile(path string) (*model.UserProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	var p model.UserProfile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse profile: %w", err)
	}
	if err := validateProfile(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

func validateProfile(p *model.UserProfile) error {
	if len(p.Skills) == 0 {
		return fmt.Errorf("profile has no skills; ranking needs at least one")
	}
	for i, s := range p.Skills {
		if strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("skills[%d]: name is required", i)
		}
		if s.Years != nil && *s.Years < 0 {
			return fmt.Errorf("skills[%d] %s: years must not be negative", i, s.Name)
		}
	}
	for i, e := range p.Experience {
		if strings.TrimSpace(e.Company) == "" {
			return fmt.Errorf("experience[%d]: company is required", i)
		}
	}
	for i, pr := range p.Projects {
		if strings.TrimSpace(pr.Name) == "" {
			return fmt.Errorf("projects[%d]: name is required", i)
		}
	}
	return nil
}

func runProfileImport(cmd *cobra.Command, args []string) error {
	profile, err := readProfileFile(args[0])
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	st, err := openStore(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	if err := st.SaveProfile(ctx, profile); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	bullets := 0
	for _, e := range profile.Experience {
		bullets += len(e.Bullets)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported profile %q: %d skills, %d roles (%d bullets), %d projects\n",
		profile.Name, len(profile.Skills), len(profile.Experience), bullets, len(profile.Projects))
	return nil
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	st, err := openStore(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	profile, err := st.LoadProfile(ctx)
	if errors.Is(err, model.ErrNotFound) {
		fmt.Fprintln(cmd.OutOrStdout(), "No profile stored; run `jobscout profile import <file>`.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(profile)
}
