package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/careermatch/internal/types"
)

var (
	profileName     string
	profileRole     string
	profileLocation string
	profileGPA      string
	locateLat       float64
	locateLng       float64
	locateSave      bool
	resumeAsText    bool
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or edit your profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your profile",
	RunE: func(cmd *cobra.Command, _ []string) error {
		p, err := current.client.Profile(cmd.Context())
		if err != nil {
			return loginHint(err)
		}
		current.printer.PrintProfile(p, current.client.ProfileImageURL(p.ProfileImageURL))
		return nil
	},
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update name, preferred role, location or GPA",
	Long:  "Update profile fields. Only the flags given are changed; the rest keep their current values.",
	RunE:  runProfileUpdate,
}

var profileLocateCmd = &cobra.Command{
	Use:   "locate",
	Short: "Resolve coordinates to an address",
	RunE:  runProfileLocate,
}

var profileImageCmd = &cobra.Command{
	Use:   "image <file>",
	Short: "Upload a profile image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open image: %w", err)
		}
		defer func() { _ = f.Close() }()

		p, err := current.client.UploadProfileImage(cmd.Context(), filepath.Base(args[0]), f)
		if err != nil {
			return loginHint(err)
		}
		current.printer.Success("Profile image updated: %s", current.client.ProfileImageURL(p.ProfileImageURL))
		return nil
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Manage your resume",
}

var resumeUploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a resume so matching can use it",
	Long:  "Upload a resume file. With --text the file is read as plain text and the backend fills your profile from it.",
	Args:  cobra.ExactArgs(1),
	RunE:  runResumeUpload,
}

func init() {
	f := profileUpdateCmd.Flags()
	f.StringVar(&profileName, "name", "", "Display name")
	f.StringVar(&profileRole, "role", "", "Preferred role")
	f.StringVar(&profileLocation, "location", "", "Location (address)")
	f.StringVar(&profileGPA, "gpa", "", "GPA")

	f = profileLocateCmd.Flags()
	f.Float64Var(&locateLat, "lat", 0, "Latitude (required)")
	f.Float64Var(&locateLng, "lng", 0, "Longitude (required)")
	f.BoolVar(&locateSave, "save", false, "Save the address as your profile location")
	_ = profileLocateCmd.MarkFlagRequired("lat")
	_ = profileLocateCmd.MarkFlagRequired("lng")

	resumeUploadCmd.Flags().BoolVar(&resumeAsText, "text", false, "Send the file contents as resume text")

	profileCmd.AddCommand(profileShowCmd, profileUpdateCmd, profileLocateCmd, profileImageCmd)
	resumeCmd.AddCommand(resumeUploadCmd)
	rootCmd.AddCommand(profileCmd, resumeCmd)
}

func runProfileUpdate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	p, err := current.client.Profile(ctx)
	if err != nil {
		return loginHint(err)
	}

	update := types.UpdateFrom(p)
	flags := cmd.Flags()
	if flags.Changed("name") {
		update.Name = profileName
	}
	if flags.Changed("role") {
		update.PreferredRole = profileRole
	}
	if flags.Changed("location") {
		update.Location = &profileLocation
	}
	if flags.Changed("gpa") {
		update.GPA = profileGPA
	}

	if err := current.client.UpdateProfile(ctx, update); err != nil {
		return loginHint(err)
	}
	current.printer.Success("Profile updated")
	return nil
}

func runProfileLocate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	address, err := current.client.ReverseGeocode(ctx, locateLat, locateLng)
	if err != nil {
		return loginHint(err)
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), address)

	if !locateSave {
		return nil
	}
	p, err := current.client.Profile(ctx)
	if err != nil {
		return loginHint(err)
	}
	update := types.UpdateFrom(p)
	update.Location = &address
	if err := current.client.UpdateProfile(ctx, update); err != nil {
		return loginHint(err)
	}
	current.printer.Success("Location saved")
	return nil
}

func runResumeUpload(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	path := args[0]

	if resumeAsText {
		text, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read resume: %w", err)
		}
		if err := current.client.ProfileFromResume(ctx, string(text)); err != nil {
			return loginHint(err)
		}
		current.printer.Success("Profile filled from %s", filepath.Base(path))
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open resume: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := current.client.UploadResume(ctx, filepath.Base(path), f); err != nil {
		return loginHint(err)
	}
	current.printer.Success("Resume uploaded, matching will refresh shortly")
	return nil
}
