package seeder

// Defaults lists the seeders `venuectl seed` runs. ownerPassword may be empty.
func Defaults(ownerPassword string) []Seeder {
	return []Seeder{
		DemoVenueSeeder{Password: ownerPassword},
	}
}
