package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/toeiclab/toeic-backend/internal/app"
	"github.com/toeiclab/toeic-backend/internal/data/db"
	"github.com/toeiclab/toeic-backend/internal/data/repos"
	"github.com/toeiclab/toeic-backend/internal/itembank"
	"github.com/toeiclab/toeic-backend/internal/platform/logger"
)

func main() {
	var file, sheet string
	var dryRun bool
	flag.StringVar(&file, "file", "", "item bank file (.xlsx or .csv)")
	flag.StringVar(&sheet, "sheet", "", "workbook sheet (default: first sheet)")
	flag.BoolVar(&dryRun, "dry-run", false, "validate rows without writing")
	flag.Parse()

	if file == "" {
		fmt.Println("usage: itemimport -file bank.xlsx [-sheet Items] [-dry-run]")
		os.Exit(2)
	}
	_ = godotenv.Load()

	cfg, err := app.LoadConfig()
	if err != nil {
		fmt.Printf("load config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Printf("init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if dryRun {
		parsed, err := itembank.ReadFile(file, sheet)
		if err != nil {
			fmt.Printf("read %s: %v\n", file, err)
			os.Exit(1)
		}
		report(len(parsed.Items), 0, parsed.Errors)
		return
	}

	dbService, err := db.NewService(cfg.DB, log)
	if err != nil {
		fmt.Printf("init database: %v\n", err)
		os.Exit(1)
	}
	defer dbService.Close()
	if err := dbService.AutoMigrateAll(); err != nil {
		fmt.Printf("automigrate: %v\n", err)
		os.Exit(1)
	}

	importer := itembank.NewImporter(log, repos.NewItemRepo(dbService.DB(), log))
	res, err := importer.ImportFile(context.Background(), file, sheet)
	if err != nil {
		fmt.Printf("import %s: %v\n", file, err)
		os.Exit(1)
	}
	report(res.Parsed, res.Upserted, res.Rejected)
}

func report(parsed int, upserted int64, rejected []itembank.RowError) {
	fmt.Printf("parsed=%d upserted=%d rejected=%d\n", parsed, upserted, len(rejected))
	for _, re := range rejected {
		fmt.Printf("  %s\n", re.Error())
	}
}
