package cmd

import (
	"fmt"
	"runtime"
	rdebug "runtime/debug"

	"github.com/spf13/cobra"

	"github.com/mcnuttandrew/prong-sub001/internal/formatter"
	"github.com/mcnuttandrew/prong-sub001/pkg/settings"
)

type versionReport struct {
	Name      string `json:"name" yaml:"name"`
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildTime string `json:"buildTime" yaml:"buildTime"`
	GoVersion string `json:"goVersion" yaml:"goVersion"`
	Platform  string `json:"platform" yaml:"platform"`
}

func buildVersionReport() versionReport {
	v := settings.VersionInformation
	goVersion := runtime.Version()
	if info, ok := rdebug.ReadBuildInfo(); ok && info.GoVersion != "" {
		goVersion = info.GoVersion
	}
	return versionReport{
		Name:      settings.CliBinaryName,
		Version:   v.BuildVersion,
		Commit:    v.Commit,
		BuildTime: v.BuildTime,
		GoVersion: goVersion,
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

func newVersionCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if format := opts.format(); format != formatter.FormatText {
				return formatter.Encode(out, format, buildVersionReport())
			}
			fmt.Fprintln(out, cliVersionString())
			return nil
		},
	}
}
