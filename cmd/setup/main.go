package main

import (
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"whatsapp-calendar-assistant/internal/config"
	"whatsapp-calendar-assistant/internal/domain"
	"whatsapp-calendar-assistant/internal/domain/calendar"
	"whatsapp-calendar-assistant/internal/domain/model"
	pg "whatsapp-calendar-assistant/internal/infra/db/postgres"
)

// This script applies the schema and seeds a demo user with a few events,
// giving a fresh deployment something to deliver on the first digest run.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("postgres connection failed: %v", err)
	}
	defer pool.Close()

	log.Println("[1/2] Applying schema...")
	schema, err := os.ReadFile(filepath.Join("deploy", "postgres", "init.sql"))
	if err != nil {
		log.Fatalf("read schema: %v", err)
	}
	if _, err := pool.Exec(ctx, string(schema)); err != nil {
		log.Fatalf("apply schema: %v", err)
	}

	log.Println("[2/2] Seeding demo data...")
	seedDemoUser(ctx, pool, cfg)

	log.Println("Setup complete.")
}

func seedDemoUser(ctx context.Context, pool *pgxpool.Pool, cfg *config.Config) {
	userRepo := pg.NewPostgresUserRepo(pool)
	eventRepo := pg.NewPostgresEventRepo(pool)

	const demoPhone = "+919800000000"
	if _, err := userRepo.FindByPhone(ctx, nil, demoPhone); err == nil {
		log.Println("demo user already present. No changes.")
		return
	} else if !errors.Is(err, domain.ErrNotFound) {
		log.Fatalf("lookup demo user: %v", err)
	}

	user, err := model.NewUser("", demoPhone)
	if err != nil {
		log.Fatalf("build demo user: %v", err)
	}
	user.Name = "Demo User"
	if err := userRepo.Save(ctx, nil, user); err != nil {
		log.Fatalf("save demo user: %v", err)
	}

	loc, err := time.LoadLocation(cfg.Digest.Timezone)
	if err != nil {
		log.Fatalf("timezone: %v", err)
	}
	today := calendar.NewClock(loc, cfg.Assistant.RolloverHour).HumanToday()

	seed := []struct {
		category model.EventCategory
		title    string
		offset   int
		time     *calendar.ClockTime
	}{
		{model.CategoryMeeting, "team standup", 1, &calendar.ClockTime{Hour: 10}},
		{model.CategoryFlight, "flight to Mumbai", 2, &calendar.ClockTime{Hour: 15, Minute: 30}},
		{model.CategoryTask, "submit expense report", 3, nil},
	}
	for _, s := range seed {
		e, err := model.NewEvent(user.ID, s.category, s.title, today.AddDays(s.offset))
		if err != nil {
			log.Fatalf("build demo event: %v", err)
		}
		e.Time = s.time
		if err := eventRepo.Save(ctx, nil, e); err != nil {
			log.Fatalf("save demo event: %v", err)
		}
		log.Printf("  seeded [%s] %s on %s", e.Category, e.Title, e.Date)
	}
}
