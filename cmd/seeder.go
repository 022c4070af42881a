package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/frahmantamala/salesdesk/internal/orgchart"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with a sample org hierarchy",
	Long:  `Seed a tenant with a sample reporting hierarchy for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		runWithOrgService(func(ctx context.Context, service *orgchart.Service) error {
			existing, err := service.ListUsers(ctx)
			if err != nil {
				return fmt.Errorf("read existing hierarchy: %w", err)
			}
			if len(existing) > 0 && !clearData {
				log.Printf("tenant already has %d users; rerun with --clear to replace them", len(existing))
				return nil
			}

			users, err := service.Seed(ctx, sampleOrg())
			if err != nil {
				return fmt.Errorf("seed hierarchy: %w", err)
			}
			fmt.Printf("Seeded %d users\n", len(users))
			return nil
		})
	},
}

func sampleOrg() []orgchart.User {
	ref := func(id string) *string { return &id }
	return []orgchart.User{
		{ID: "u-ceo", FirstName: "Dana", LastName: "Whitfield", Email: "dana@example.com", Permissions: orgchart.RoleAdmin},
		{ID: "u-vp-sales", FirstName: "Marcus", LastName: "Reyes", Email: "marcus@example.com", Permissions: orgchart.RoleVP, ParentID: ref("u-ceo")},
		{ID: "u-dir-east", FirstName: "Priya", LastName: "Nair", Email: "priya@example.com", Permissions: orgchart.RoleDirector, ParentID: ref("u-vp-sales")},
		{ID: "u-dir-west", FirstName: "Tom", LastName: "Okafor", Email: "tom@example.com", Permissions: orgchart.RoleDirector, ParentID: ref("u-vp-sales")},
		{ID: "u-mgr-east", FirstName: "Lena", LastName: "Hoffmann", Email: "lena@example.com", Phone: "+1 555 0101", Permissions: orgchart.RoleManager, ParentID: ref("u-dir-east")},
		{ID: "u-rep-1", FirstName: "Sam", LastName: "Park", Email: "sam@example.com", Permissions: orgchart.RoleUser, ParentID: ref("u-mgr-east")},
		{ID: "u-rep-2", FirstName: "Ana", LastName: "Costa", Email: "ana@example.com", Permissions: orgchart.RoleUser, ParentID: ref("u-mgr-east")},
		{ID: "u-it", FirstName: "Ravi", LastName: "Shah", Email: "ravi@example.com", Permissions: orgchart.RoleIT, ParentID: ref("u-ceo")},
		{ID: "u-mkt", FirstName: "Chloe", LastName: "Martin", Email: "chloe@example.com", Permissions: orgchart.RoleMarketing, ParentID: ref("u-ceo")},
	}
}
