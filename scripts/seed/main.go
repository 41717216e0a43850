// Command seed populates an empty snapshot database with a small demo
// roster so the API is usable straight away.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/google/uuid"

	"github.com/okulapps/etut-api/internal/models"
	"github.com/okulapps/etut-api/internal/repository"
	"github.com/okulapps/etut-api/pkg/config"
	"github.com/okulapps/etut-api/pkg/database"
)

func main() {
	var force bool
	flag.BoolVar(&force, "force", false, "overwrite existing roster snapshots")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewSQLite(cfg.Database)
	if err != nil {
		log.Fatalf("failed to open snapshot database: %v", err)
	}
	defer db.Close()

	repo := repository.NewSnapshotRepository(db)
	ctx := context.Background()

	if !force {
		var existing []models.Teacher
		if ok, err := repo.Load(ctx, repository.KeyTeachers, &existing); err != nil {
			log.Fatalf("failed to inspect snapshots: %v", err)
		} else if ok && len(existing) > 0 {
			log.Fatal("roster snapshots already present, rerun with -force to overwrite")
		}
	}

	teachers := []models.Teacher{
		{
			ID:      uuid.NewString(),
			Name:    "Ahmet Hoca",
			Subject: "Matematik",
			AvailableHours: models.AvailableHours{
				"Pazartesi": {"09:30-10:10", "10:20-11:00"},
				"Salı":      {},
				"Çarşamba":  {"09:30-10:10"},
				"Perşembe":  {},
				"Cuma":      {"13:40-14:20"},
				"Cumartesi": {},
				"Pazar":     {},
			},
		},
		{
			ID:      uuid.NewString(),
			Name:    "Ayşe Öğretmen",
			Subject: "Fizik",
			AvailableHours: models.AvailableHours{
				"Pazartesi": {"10:20-11:00"},
				"Salı":      {"09:30-10:10", "10:20-11:00"},
				"Çarşamba":  {},
				"Perşembe":  {"13:40-14:20"},
				"Cuma":      {},
				"Cumartesi": {},
				"Pazar":     {},
			},
		},
	}

	students := []models.Student{
		{ID: uuid.NewString(), Name: "Ali Veli", Class: "9-A", StudentNumber: "101"},
		{ID: uuid.NewString(), Name: "Fatma Yılmaz", Class: "10-B", StudentNumber: "202"},
	}

	if err := repo.Save(ctx, repository.KeyTeachers, teachers); err != nil {
		log.Fatalf("failed to seed teachers: %v", err)
	}
	if err := repo.Save(ctx, repository.KeyStudents, students); err != nil {
		log.Fatalf("failed to seed students: %v", err)
	}
	if err := repo.Save(ctx, repository.KeyTimeSlots, models.DefaultTimeSlots()); err != nil {
		log.Fatalf("failed to seed time slots: %v", err)
	}
	if err := repo.Save(ctx, repository.KeySessions, []models.Session{}); err != nil {
		log.Fatalf("failed to seed sessions: %v", err)
	}

	log.Printf("seeded %d teachers, %d students, %d time slots", len(teachers), len(students), len(models.DefaultTimeSlots()))
}
