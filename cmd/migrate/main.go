package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/damoang/angple-cms/internal/config"
	"github.com/damoang/angple-cms/internal/database"
	"github.com/damoang/angple-cms/internal/domain"
	"github.com/damoang/angple-cms/internal/migration"
	"github.com/damoang/angple-cms/internal/repository"
	"github.com/damoang/angple-cms/internal/service"
)

// Migration targets
const (
	targetSchema = "schema"
	targetSlugs  = "slugs"
	targetTitles = "titles"
	targetSeed   = "seed"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "configs/config.local.yaml", "config file path")
	target := flag.String("target", "all", "migration target: all, schema, slugs, titles, seed")
	siteID := flag.String("site", "", "site id for the seed target (comma separated)")
	dryRun := flag.Bool("dry-run", false, "show what would be migrated without executing")
	verbose := flag.Bool("verbose", false, "verbose SQL logging")
	flag.Parse()

	config.LoadDotEnv(config.AppEnv())

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *verbose {
		cfg.Database.LogLevel = "info"
	}

	db, err := database.Open(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get underlying DB: %v", err)
	}
	defer sqlDB.Close()

	if *dryRun {
		runDryRun(db, *target, *siteID)
		return
	}

	start := time.Now()
	for _, t := range parseTargets(*target) {
		log.Printf("[migrate] Starting: %s", t)
		tStart := time.Now()

		var err error
		switch t {
		case targetSchema:
			err = db.AutoMigrate(migration.Models()...)
		case targetSlugs:
			var n int64
			n, err = migration.BackfillSlugs(db)
			log.Printf("[migrate:slugs] Repaired %d rows", n)
		case targetTitles:
			var n int64
			n, err = migration.BackfillTitleSearch(db)
			log.Printf("[migrate:titles] Folded %d titles", n)
		case targetSeed:
			err = seedSites(db, *siteID)
		default:
			log.Printf("[migrate] Unknown target: %s", t)
			continue
		}

		if err != nil {
			log.Fatalf("[migrate] FAILED %s: %v", t, err)
		}
		log.Printf("[migrate] Completed %s in %v", t, time.Since(tStart))
	}
	log.Printf("[migrate] All migrations completed in %v", time.Since(start))
}

func parseTargets(target string) []string {
	if target == "all" {
		return []string{targetSchema, targetSlugs, targetTitles, targetSeed}
	}
	return strings.Split(target, ",")
}

func splitSites(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// seedSites creates the system content types for each site
func seedSites(db *gorm.DB, raw string) error {
	sites := splitSites(raw)
	if len(sites) == 0 {
		log.Printf("[migrate:seed] no -site given, skipping")
		return nil
	}
	types := service.NewContentTypeService(repository.NewContentTypeRepository(db), repository.NewContentRepository(db), nil)
	for _, site := range sites {
		if !domain.ValidSiteID(site) {
			return fmt.Errorf("invalid site id %q", site)
		}
		if err := types.EnsureSystemTypes(context.Background(), site); err != nil {
			return err
		}
		log.Printf("[migrate:seed] %s: system content types ensured", site)
	}
	return nil
}

func runDryRun(db *gorm.DB, target, siteID string) {
	for _, t := range parseTargets(target) {
		switch t {
		case targetSchema:
			for _, m := range migration.Models() {
				log.Printf("[dry-run] schema: %T (exists=%v)", m, db.Migrator().HasTable(m))
			}
		case targetSlugs:
			n, err := migration.CountMissingSlugs(db)
			if err != nil {
				log.Printf("[dry-run] slugs: %v", err)
				continue
			}
			log.Printf("[dry-run] slugs: %d rows would be repaired", n)
		case targetTitles:
			n, err := migration.CountMissingTitleSearch(db)
			if err != nil {
				log.Printf("[dry-run] titles: %v", err)
				continue
			}
			log.Printf("[dry-run] titles: %d rows would be folded", n)
		case targetSeed:
			log.Printf("[dry-run] seed: system content types for %v", splitSites(siteID))
		default:
			log.Printf("[dry-run] Unknown target: %s", t)
		}
	}
}
