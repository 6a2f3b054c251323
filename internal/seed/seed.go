// Package seed populates a development database with realistic demo data:
// verified users, help requests spread across the lifecycle states, and chat
// threads on the engaged requests. Production refuses to run it.
package seed

import (
	"context"
	"fmt"
	"log"
	"time"

	"puntovuela/internal/catalog"
	"puntovuela/internal/models"
	"puntovuela/internal/repository"

	"gorm.io/gorm"
)

// Options controls how much data the seeder generates.
type Options struct {
	NumUsers    int
	NumRequests int
	ShouldClean bool
}

// DefaultOptions returns a small but representative dataset.
func DefaultOptions() Options {
	return Options{
		NumUsers:    20,
		NumRequests: 40,
		ShouldClean: false,
	}
}

// Seeder orchestrates demo-data generation against a database handle.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
	cat     *catalog.Catalog
}

// NewSeeder creates a seeder. The catalog supplies the category and location
// vocabulary so seeded requests pass the same validation real ones do.
func NewSeeder(db *gorm.DB, cat *catalog.Catalog) *Seeder {
	return &Seeder{db: db, factory: NewFactory(), cat: cat}
}

// Run executes the full seeding pass.
func (s *Seeder) Run(ctx context.Context, opts Options) error {
	if opts.ShouldClean {
		if err := s.ClearAll(ctx); err != nil {
			return fmt.Errorf("clear existing data: %w", err)
		}
	}

	if err := s.syncLocations(ctx); err != nil {
		return fmt.Errorf("sync locations: %w", err)
	}

	users, err := s.SeedUsers(ctx, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("seed users: %w", err)
	}

	requests, err := s.SeedRequests(ctx, users, opts.NumRequests)
	if err != nil {
		return fmt.Errorf("seed requests: %w", err)
	}

	if err := s.SeedMessages(ctx, requests); err != nil {
		return fmt.Errorf("seed messages: %w", err)
	}

	log.Printf("🌱 seeding complete: %d users, %d requests", len(users), len(requests))
	return nil
}

// ClearAll deletes seeded rows in dependency order.
func (s *Seeder) ClearAll(ctx context.Context) error {
	tables := []string{"messages", "help_requests", "locations", "users"}
	for _, table := range tables {
		if err := s.db.WithContext(ctx).Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	log.Println("✓ cleared existing data")
	return nil
}

func (s *Seeder) syncLocations(ctx context.Context) error {
	repo := repository.NewLocationRepository(s.db)
	if err := repo.SyncFromCatalog(ctx, s.cat.Locations); err != nil {
		return err
	}
	log.Printf("✓ synced %d locations", len(s.cat.Locations))
	return nil
}

// SeedUsers creates n verified users. All share the same demo password so a
// developer can log in as any of them.
func (s *Seeder) SeedUsers(ctx context.Context, n int) ([]models.User, error) {
	users := make([]models.User, 0, n)
	for i := 0; i < n; i++ {
		user := s.factory.BuildUser(i)
		if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
			return nil, fmt.Errorf("create user %s: %w", user.Email, err)
		}
		users = append(users, user)
	}
	log.Printf("✓ created %d users (password: %s)", len(users), DemoPassword)
	return users, nil
}

// SeedRequests creates n help requests distributed across lifecycle states.
// Roughly half stay pending, a quarter are accepted, and a quarter completed.
// Assignments respect the engagement rule: a volunteer holds at most one
// accepted request at a time.
func (s *Seeder) SeedRequests(ctx context.Context, users []models.User, n int) ([]models.HelpRequest, error) {
	if len(users) < 2 {
		return nil, fmt.Errorf("need at least 2 users to seed requests, have %d", len(users))
	}

	var locations []models.Location
	if err := s.db.WithContext(ctx).Find(&locations).Error; err != nil {
		return nil, fmt.Errorf("load locations: %w", err)
	}
	if len(locations) == 0 {
		return nil, fmt.Errorf("no locations to attach requests to")
	}

	engaged := make(map[uint]bool)
	requests := make([]models.HelpRequest, 0, n)

	for i := 0; i < n; i++ {
		requester := users[i%len(users)]
		req := s.factory.BuildRequest(requester.ID, s.cat.Categories, locations, i)

		switch {
		case i%4 == 1:
			// Accepted: pick a volunteer who is not the requester and not
			// already engaged elsewhere. Leave pending if none qualifies.
			if v, ok := pickVolunteer(users, requester.ID, engaged); ok {
				req.Status = models.StatusAccepted
				req.VolunteerID = &v
				engaged[v] = true
			}
		case i%4 == 3:
			// Completed requests keep their volunteer for history but free
			// the engagement slot.
			if v, ok := pickVolunteer(users, requester.ID, nil); ok {
				req.Status = models.StatusCompleted
				req.VolunteerID = &v
			}
		}

		if err := s.db.WithContext(ctx).Create(&req).Error; err != nil {
			return nil, fmt.Errorf("create request for user %d: %w", requester.ID, err)
		}
		requests = append(requests, req)
	}

	log.Printf("✓ created %d requests (%d engagements active)", len(requests), len(engaged))
	return requests, nil
}

// SeedMessages attaches a short chat thread to each non-pending request.
func (s *Seeder) SeedMessages(ctx context.Context, requests []models.HelpRequest) error {
	total := 0
	for _, req := range requests {
		if req.Status == models.StatusPending || req.VolunteerID == nil {
			continue
		}
		msgs := s.factory.BuildThread(req)
		for i := range msgs {
			if err := s.db.WithContext(ctx).Create(&msgs[i]).Error; err != nil {
				return fmt.Errorf("create message on request %d: %w", req.ID, err)
			}
		}
		total += len(msgs)
	}
	log.Printf("✓ created %d messages", total)
	return nil
}

// pickVolunteer returns a user eligible to volunteer for the given requester.
// When engaged is non-nil the pick also avoids already-engaged volunteers.
func pickVolunteer(users []models.User, requesterID uint, engaged map[uint]bool) (uint, bool) {
	start := int(time.Now().UnixNano()) % len(users)
	if start < 0 {
		start = -start
	}
	for i := 0; i < len(users); i++ {
		u := users[(start+i)%len(users)]
		if u.ID == requesterID {
			continue
		}
		if engaged != nil && engaged[u.ID] {
			continue
		}
		return u.ID, true
	}
	return 0, false
}
