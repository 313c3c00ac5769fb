package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/PratikDhanave/web-analytics-service/internal/models"
	"github.com/PratikDhanave/web-analytics-service/internal/store"
)

// websiteAdmin is the slice of the Postgres store the website commands use.
type websiteAdmin interface {
	CreateWebsite(ctx context.Context, name, domain string) (models.Website, error)
	ListWebsites(ctx context.Context) ([]models.Website, error)
	SetWebsiteActive(ctx context.Context, id string, active bool) (models.Website, error)
	RotateAPIKey(ctx context.Context, id string) (models.Website, error)
}

// openAdmin connects to Postgres and makes sure the schema exists.
var openAdmin = func(ctx context.Context, dbURL string) (websiteAdmin, func(), error) {
	pg, err := store.NewPostgresStore(dbURL)
	if err != nil {
		return nil, nil, err
	}
	if err := pg.EnsureSchema(ctx); err != nil {
		pg.Close()
		return nil, nil, err
	}
	return pg, pg.Close, nil
}

var dbURLFlag = &cli.StringFlag{
	Name:     "db-url",
	Usage:    "Postgres connection string",
	EnvVars:  []string{"ANALYTICS_DB_URL"},
	Required: true,
}

var idFlag = &cli.StringFlag{
	Name:     "id",
	Usage:    "Website id",
	Required: true,
}

func newWebsiteCommand() *cli.Command {
	return &cli.Command{
		Name:  "website",
		Usage: "Manage registered websites",
		Subcommands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Register a website and print its API key",
				Flags: []cli.Flag{
					dbURLFlag,
					&cli.StringFlag{Name: "name", Usage: "Display name", Required: true},
					&cli.StringFlag{Name: "domain", Usage: "Site domain, e.g. example.com", Required: true},
				},
				Action: withAdmin(func(c *cli.Context, admin websiteAdmin) error {
					w, err := admin.CreateWebsite(c.Context, c.String("name"), c.String("domain"))
					if err != nil {
						return err
					}
					return printWebsites(c.App.Writer, w)
				}),
			},
			{
				Name:  "list",
				Usage: "List websites",
				Flags: []cli.Flag{dbURLFlag},
				Action: withAdmin(func(c *cli.Context, admin websiteAdmin) error {
					sites, err := admin.ListWebsites(c.Context)
					if err != nil {
						return err
					}
					return printWebsites(c.App.Writer, sites...)
				}),
			},
			{
				Name:  "activate",
				Usage: "Accept events for a website",
				Flags: []cli.Flag{dbURLFlag, idFlag},
				Action: withAdmin(func(c *cli.Context, admin websiteAdmin) error {
					return setActive(c, admin, true)
				}),
			},
			{
				Name:  "deactivate",
				Usage: "Refuse events for a website",
				Flags: []cli.Flag{dbURLFlag, idFlag},
				Action: withAdmin(func(c *cli.Context, admin websiteAdmin) error {
					return setActive(c, admin, false)
				}),
			},
			{
				Name:  "rotate-key",
				Usage: "Replace a website's API key; the old key stops working immediately",
				Flags: []cli.Flag{dbURLFlag, idFlag},
				Action: withAdmin(func(c *cli.Context, admin websiteAdmin) error {
					w, err := admin.RotateAPIKey(c.Context, c.String("id"))
					if err != nil {
						return err
					}
					return printWebsites(c.App.Writer, w)
				}),
			},
		},
	}
}

func withAdmin(fn func(*cli.Context, websiteAdmin) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		admin, closeFn, err := openAdmin(c.Context, c.String("db-url"))
		if err != nil {
			return fmt.Errorf("connect: %w", err)
		}
		defer closeFn()
		return fn(c, admin)
	}
}

func setActive(c *cli.Context, admin websiteAdmin, active bool) error {
	w, err := admin.SetWebsiteActive(c.Context, c.String("id"), active)
	if err != nil {
		return err
	}
	return printWebsites(c.App.Writer, w)
}

func printWebsites(out io.Writer, sites ...models.Website) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tDOMAIN\tACTIVE\tAPI KEY")
	for _, w := range sites {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\n", w.ID, w.Name, w.Domain, w.IsActive, w.APIKey)
	}
	return tw.Flush()
}
