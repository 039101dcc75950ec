package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/cubeshop/app/repositories"
	"github.com/shashiranjanraj/cubeshop/internal/kernel"
	"github.com/shashiranjanraj/cubeshop/internal/server"
	"github.com/shashiranjanraj/cubeshop/pkg/auth"
	"github.com/shashiranjanraj/cubeshop/pkg/router"
)

// cubeshop serve
var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"run"},
	Short:   "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return server.Start(ctx)
	},
}

// cubeshop route:list
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		k := kernel.NewHTTPKernel(kernel.Deps{
			Store:    repositories.NewMemoryStore(),
			Verifier: auth.VerifierFunc(func(context.Context, string) (string, error) { return "", nil }),
		})
		return printRoutes(cmd, k.Routes())
	},
}

func printRoutes(cmd *cobra.Command, infos []router.RouteInfo) error {
	// Sort by path then method.
	sort.SliceStable(infos, func(i, j int) bool {
		if infos[i].Path != infos[j].Path {
			return infos[i].Path < infos[j].Path
		}
		return infos[i].Method < infos[j].Method
	})

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "METHOD\tPATH\tNAME")
	fmt.Fprintln(w, "------\t----\t----")
	for _, ri := range infos {
		fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
	}
	return w.Flush()
}
