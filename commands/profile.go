package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lockedin/go-focus-monitor/internal/core/profile"
	"github.com/lockedin/go-focus-monitor/internal/monitor"
	"github.com/lockedin/go-focus-monitor/internal/presentation/formatter"
)

var (
	createCriteria  []string
	createBlocklist []string
	createAllowlist []string
	createActivate  bool

	profileCmd = &cobra.Command{
		Use:   "profile",
		Short: "Manage focus profiles",
	}

	profileListCmd = &cobra.Command{
		Use:   "list",
		Short: "List available profiles",
		RunE:  runProfileList,
	}

	profileShowCmd = &cobra.Command{
		Use:   "show <name>",
		Short: "Show a profile's full definition",
		Args:  cobra.ExactArgs(1),
		RunE:  runProfileShow,
	}

	profileCreateCmd = &cobra.Command{
		Use:   "create <name>",
		Short: "Create or update a profile",
		Long: `Create a focus profile describing what counts as productive.

Examples:
  go-focus-monitor profile create thesis \
    --criteria "Working on the thesis document" \
    --criteria "Reading papers on arxiv or in Zotero" \
    --blocklist steam --blocklist discord \
    --allowlist zotero --use`,
		Args: cobra.ExactArgs(1),
		RunE: runProfileCreate,
	}

	profileDeleteCmd = &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a user-created profile",
		Args:  cobra.ExactArgs(1),
		RunE:  runProfileDelete,
	}

	profileUseCmd = &cobra.Command{
		Use:   "use <name>",
		Short: "Set the active profile for future sessions",
		Args:  cobra.ExactArgs(1),
		RunE:  runProfileUse,
	}
)

func init() {
	profileCreateCmd.Flags().StringArrayVarP(&createCriteria, "criteria", "c", nil,
		"Productive-activity description (repeatable)")
	profileCreateCmd.Flags().StringArrayVar(&createBlocklist, "blocklist", nil,
		"Process name always counted as distracting (repeatable)")
	profileCreateCmd.Flags().StringArrayVar(&createAllowlist, "allowlist", nil,
		"Process name always counted as productive (repeatable)")
	profileCreateCmd.Flags().BoolVar(&createActivate, "use", false,
		"Activate the profile after creating it")

	profileCmd.AddCommand(profileListCmd, profileShowCmd, profileCreateCmd,
		profileDeleteCmd, profileUseCmd)
	rootCmd.AddCommand(profileCmd)
}

// profileEnv loads the registry and store without starting a watcher;
// profile commands are one-shot.
func profileEnv() (*monitor.Config, *profile.Registry, *profile.Store, error) {
	cfg, err := buildConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	registry := profile.NewRegistry()
	store, err := profile.NewStore(cfg.ProfilesDir)
	if err != nil {
		return nil, nil, nil, err
	}
	profiles, err := store.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	for _, p := range profiles {
		registry.Upsert(p)
	}
	if name := readActiveProfile(cfg.DataDir); name != "" {
		// A stale active-profile file falls back to the default.
		_ = registry.SetActive(name)
	}
	return cfg, registry, store, nil
}

func runProfileList(cmd *cobra.Command, args []string) error {
	_, registry, _, err := profileEnv()
	if err != nil {
		return err
	}
	formatter.NewProfileFormatter().FormatList(registry.List(), registry.ActiveName())
	return nil
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	_, registry, _, err := profileEnv()
	if err != nil {
		return err
	}
	p, err := registry.Get(args[0])
	if err != nil {
		return err
	}
	formatter.NewProfileFormatter().FormatDetail(p)
	return nil
}

func runProfileCreate(cmd *cobra.Command, args []string) error {
	if len(createCriteria) == 0 {
		return fmt.Errorf("at least one --criteria is required")
	}

	cfg, registry, store, err := profileEnv()
	if err != nil {
		return err
	}

	p := profile.Profile{
		Name:      args[0],
		Criteria:  createCriteria,
		Blocklist: createBlocklist,
		Allowlist: createAllowlist,
	}
	if existing, err := registry.Get(p.Name); err == nil && existing.BuiltIn {
		return fmt.Errorf("profile %q is built-in and cannot be overwritten", p.Name)
	}
	if err := store.Save(p); err != nil {
		return err
	}
	registry.Upsert(p)
	fmt.Printf("Profile %q saved.\n", p.Name)

	if createActivate {
		if err := writeActiveProfile(cfg.DataDir, p.Name); err != nil {
			return err
		}
		fmt.Printf("Profile %q is now active.\n", p.Name)
	}
	return nil
}

func runProfileDelete(cmd *cobra.Command, args []string) error {
	_, registry, store, err := profileEnv()
	if err != nil {
		return err
	}
	// The registry enforces the deletion rules: built-ins and the
	// active profile stay.
	if err := registry.Delete(args[0]); err != nil {
		return err
	}
	if err := store.Delete(args[0]); err != nil {
		return err
	}
	fmt.Printf("Profile %q deleted.\n", args[0])
	return nil
}

func runProfileUse(cmd *cobra.Command, args []string) error {
	cfg, registry, _, err := profileEnv()
	if err != nil {
		return err
	}
	if err := registry.SetActive(args[0]); err != nil {
		return err
	}
	if err := writeActiveProfile(cfg.DataDir, args[0]); err != nil {
		return err
	}
	fmt.Printf("Profile %q is now active.\n", args[0])
	return nil
}
