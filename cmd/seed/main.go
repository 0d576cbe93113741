// seed loads a local dev dataset: one account per role plus sample
// events, prayers, donations and sermons. Idempotent; safe to re-run.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/auth"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/domain"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/infrastructure/postgres"
)

const seedPassword = "ChangeMe123!"

type seedUser struct {
	email     string
	firstName string
	lastName  string
	role      domain.Role
}

var seedUsers = []seedUser{
	{"admin@tcc.local", "Admin", "Account", domain.RoleSuperAdmin},
	{"pastor@tcc.local", "Sai", "Kyaw", domain.RoleStaff},
	{"leader@tcc.local", "Nang", "Htwe", domain.RoleMinistryLeader},
	{"member1@tcc.local", "Khun", "Aung", domain.RoleMember},
	{"member2@tcc.local", "Mya", "Thandar", domain.RoleMember},
	{"visitor@tcc.local", "Guest", "Visitor", domain.RoleVisitor},
}

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	pool, err := postgres.NewPool(ctx, dbURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	hash, err := auth.HashPassword(seedPassword)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	// Upsert one account per role. The hash is only refreshed on
	// insert so a changed dev password survives re-runs.
	userIDs := make(map[string]string, len(seedUsers))
	for _, u := range seedUsers {
		var id string
		err := pool.QueryRow(ctx, `
			INSERT INTO users (email, password_hash, first_name, last_name, role, status, joined_at)
			VALUES ($1, $2, $3, $4, $5, 'active', NOW())
			ON CONFLICT (email) DO UPDATE SET updated_at = NOW()
			RETURNING id`,
			u.email, hash, u.firstName, u.lastName, u.role,
		).Scan(&id)
		if err != nil {
			log.Fatalf("upsert user %s: %v", u.email, err)
		}
		userIDs[u.email] = id
	}

	pastorID := userIDs["pastor@tcc.local"]
	leaderID := userIDs["leader@tcc.local"]
	member1ID := userIDs["member1@tcc.local"]
	member2ID := userIDs["member2@tcc.local"]

	now := time.Now()
	nextSunday := now.AddDate(0, 0, int((7+time.Sunday-now.Weekday())%7)+7).Truncate(24 * time.Hour).Add(9 * time.Hour)

	events := seedEvents(ctx, pool, pastorID, nextSunday)
	prayers := seedPrayers(ctx, pool, leaderID, member1ID)
	donations := seedDonations(ctx, pool, member1ID, member2ID, now)
	sermons := seedSermons(ctx, pool, pastorID, now)

	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Printf("  Users:     %d (password for all: %s)\n", len(seedUsers), seedPassword)
	fmt.Printf("  Events:    %d inserted\n", events)
	fmt.Printf("  Prayers:   %d inserted\n", prayers)
	fmt.Printf("  Donations: %d inserted\n", donations)
	fmt.Printf("  Sermons:   %d inserted\n", sermons)
	fmt.Println()
	fmt.Println("How to test:")
	fmt.Println()
	fmt.Println("  Step 1: log in as the admin:")
	fmt.Println()
	fmt.Println("    curl -s -X POST http://localhost:8080/auth/login \\")
	fmt.Println("      -H 'Content-Type: application/json' \\")
	fmt.Printf("      -d '{\"email\":\"admin@tcc.local\",\"password\":\"%s\"}'\n", seedPassword)
	fmt.Println()
	fmt.Println("  Step 2: call the API with the returned access token:")
	fmt.Println()
	fmt.Println("    export JWT=eyJ...")
	fmt.Println("    curl -s http://localhost:8080/events -H \"Authorization: Bearer $JWT\"")
	fmt.Println("    curl -s http://localhost:8080/donations/summary -H \"Authorization: Bearer $JWT\"")
	fmt.Println()
	fmt.Println("  The small-group event has capacity 2, so a third registration")
	fmt.Println("  lands on the waitlist.")
}

// insertUnlessExists guards sample rows by a natural key so re-runs do
// not duplicate them. Returns 1 when the row was inserted.
func insertUnlessExists(ctx context.Context, pool *pgxpool.Pool, existsQuery, insertQuery string, existsArgs, insertArgs []any) int {
	var exists bool
	if err := pool.QueryRow(ctx, existsQuery, existsArgs...).Scan(&exists); err != nil {
		log.Fatalf("existence check: %v", err)
	}
	if exists {
		return 0
	}
	if _, err := pool.Exec(ctx, insertQuery, insertArgs...); err != nil {
		log.Fatalf("insert: %v", err)
	}
	return 1
}

func seedEvents(ctx context.Context, pool *pgxpool.Pool, createdBy string, nextSunday time.Time) int {
	inserted := 0

	inserted += insertUnlessExists(ctx, pool,
		`SELECT EXISTS (SELECT 1 FROM events WHERE title = $1)`,
		`INSERT INTO events (title, description, event_type, status, starts_at, ends_at, location, capacity, created_by)
		 VALUES ($1, $2, 'service', 'published', $3, $4, 'Main Hall', NULL, $5)`,
		[]any{"Sunday Worship Service"},
		[]any{"Sunday Worship Service", "Weekly worship service, everyone welcome.",
			nextSunday, nextSunday.Add(2 * time.Hour), createdBy},
	)

	deadline := nextSunday.AddDate(0, 0, 3)
	inserted += insertUnlessExists(ctx, pool,
		`SELECT EXISTS (SELECT 1 FROM events WHERE title = $1)`,
		`INSERT INTO events (title, description, event_type, status, starts_at, ends_at, location, capacity, registration_deadline, created_by)
		 VALUES ($1, $2, 'bible_study', 'published', $3, $4, 'Room 2', 2, $5, $6)`,
		[]any{"Midweek Small Group"},
		[]any{"Midweek Small Group", "Capacity 2, for trying out the waitlist.",
			nextSunday.AddDate(0, 0, 4).Add(10 * time.Hour), nextSunday.AddDate(0, 0, 4).Add(12 * time.Hour),
			deadline, createdBy},
	)

	lastMonth := nextSunday.AddDate(0, -1, 0)
	inserted += insertUnlessExists(ctx, pool,
		`SELECT EXISTS (SELECT 1 FROM events WHERE title = $1)`,
		`INSERT INTO events (title, description, event_type, status, starts_at, ends_at, location, created_by)
		 VALUES ($1, $2, 'outreach', 'completed', $3, $4, 'Taunggyi Market', $5)`,
		[]any{"Community Outreach Day"},
		[]any{"Community Outreach Day", "Already completed, shows up in past listings.",
			lastMonth, lastMonth.Add(6 * time.Hour), createdBy},
	)

	return inserted
}

func seedPrayers(ctx context.Context, pool *pgxpool.Pool, leaderID, memberID string) int {
	inserted := 0

	inserted += insertUnlessExists(ctx, pool,
		`SELECT EXISTS (SELECT 1 FROM prayers WHERE title = $1)`,
		`INSERT INTO prayers (requester_id, title, body, category, privacy, status)
		 VALUES ($1, $2, $3, 'healing', 'public', 'open')`,
		[]any{"Recovery after surgery"},
		[]any{memberID, "Recovery after surgery", "Please pray for my mother's recovery."},
	)

	inserted += insertUnlessExists(ctx, pool,
		`SELECT EXISTS (SELECT 1 FROM prayers WHERE title = $1)`,
		`INSERT INTO prayers (requester_id, title, body, category, privacy, status)
		 VALUES ($1, $2, $3, 'guidance', 'congregation', 'open')`,
		[]any{"Wisdom for a job decision"},
		[]any{memberID, "Wisdom for a job decision", "Choosing between two offers, visible to members only."},
	)

	inserted += insertUnlessExists(ctx, pool,
		`SELECT EXISTS (SELECT 1 FROM prayers WHERE title = $1)`,
		`INSERT INTO prayers (requester_id, title, body, category, privacy, status)
		 VALUES ($1, $2, $3, 'ministry', 'leaders_only', 'open')`,
		[]any{"Youth ministry volunteers"},
		[]any{leaderID, "Youth ministry volunteers", "Pastoral team only: we need two more volunteers."},
	)

	inserted += insertUnlessExists(ctx, pool,
		`SELECT EXISTS (SELECT 1 FROM prayers WHERE title = $1)`,
		`INSERT INTO prayers (requester_id, title, body, category, privacy, status, answered_at, testimony)
		 VALUES ($1, $2, $3, 'thanksgiving', 'public', 'answered', NOW() - INTERVAL '2 days', $4)`,
		[]any{"New roof for the hall"},
		[]any{memberID, "New roof for the hall", "Funding for the roof repair.",
			"Fully funded within three weeks, thank you all."},
	)

	return inserted
}

func seedDonations(ctx context.Context, pool *pgxpool.Pool, donor1, donor2 string, now time.Time) int {
	type donationRow struct {
		donor     *string
		amount    int64
		fund      domain.Fund
		method    domain.PaymentMethod
		reference string
		daysAgo   int
	}

	rows := []donationRow{
		{&donor1, 5000000, domain.FundGeneral, domain.PaymentCash, "seed-don-001", 2},
		{&donor1, 2500000, domain.FundMissions, domain.PaymentBankTransfer, "seed-don-002", 5},
		{&donor2, 10000000, domain.FundBuilding, domain.PaymentBankTransfer, "seed-don-003", 7},
		{&donor2, 1500000, domain.FundYouth, domain.PaymentOnline, "seed-don-004", 12},
		{nil, 3000000, domain.FundCharity, domain.PaymentCash, "seed-don-005", 14},
	}

	inserted := 0
	for _, row := range rows {
		inserted += insertUnlessExists(ctx, pool,
			`SELECT EXISTS (SELECT 1 FROM donations WHERE reference = $1)`,
			`INSERT INTO donations (donor_id, amount, currency, fund, method, status, reference, given_at)
			 VALUES ($1, $2, 'MMK', $3, $4, 'completed', $5, $6)`,
			[]any{row.reference},
			[]any{row.donor, row.amount, row.fund, row.method, row.reference,
				now.AddDate(0, 0, -row.daysAgo)},
		)
	}
	return inserted
}

func seedSermons(ctx context.Context, pool *pgxpool.Pool, createdBy string, now time.Time) int {
	inserted := 0

	inserted += insertUnlessExists(ctx, pool,
		`SELECT EXISTS (SELECT 1 FROM sermons WHERE title = $1)`,
		`INSERT INTO sermons (title, speaker, series, scripture, summary, status, preached_at, published_at, created_by)
		 VALUES ($1, $2, $3, $4, $5, 'published', $6, $6, $7)`,
		[]any{"The Good Shepherd"},
		[]any{"The Good Shepherd", "Rev. Sai Kyaw", "Psalms of Trust", "Psalm 23",
			"Walking through the valley with the Shepherd.", now.AddDate(0, 0, -7), createdBy},
	)

	inserted += insertUnlessExists(ctx, pool,
		`SELECT EXISTS (SELECT 1 FROM sermons WHERE title = $1)`,
		`INSERT INTO sermons (title, speaker, series, scripture, summary, status, preached_at, published_at, created_by)
		 VALUES ($1, $2, $3, $4, $5, 'published', $6, $6, $7)`,
		[]any{"Faith That Works"},
		[]any{"Faith That Works", "Rev. Sai Kyaw", "Letters of James", "James 2:14-26",
			"Faith shown through what we do.", now.AddDate(0, 0, -14), createdBy},
	)

	inserted += insertUnlessExists(ctx, pool,
		`SELECT EXISTS (SELECT 1 FROM sermons WHERE title = $1)`,
		`INSERT INTO sermons (title, speaker, scripture, summary, status, preached_at, created_by)
		 VALUES ($1, $2, $3, $4, 'draft', $5, $6)`,
		[]any{"Hope in Exile"},
		[]any{"Hope in Exile", "Rev. Sai Kyaw", "Jeremiah 29",
			"Draft, only visible to staff until published.", now.AddDate(0, 0, 7), createdBy},
	)

	return inserted
}
