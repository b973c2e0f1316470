// Command analyze runs the full analysis pipeline once for a coupon and
// prints the suggested rows, the batch-job counterpart of the HTTP
// pipeline endpoint.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v4/stdlib"

	"StryktipsSync/internal/config"
	"StryktipsSync/internal/model"
	"StryktipsSync/internal/repository"
	"StryktipsSync/internal/service"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	couponUUID := flag.String("coupon", "", "coupon UUID (default: the active coupon)")
	maxRows := flag.Int("rows", 3, "maximum number of rows to generate")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logrusLogger := logrus.New()
	logrusLogger.SetLevel(logrus.InfoLevel)

	db, err := gorm.Open(postgres.Open(cfg.Postgres.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		logrusLogger.Fatalf("connect to postgres: %v", err)
	}

	couponRepo := repository.NewCouponRepository(db)
	analysisRepo := repository.NewAnalysisRepository(db)
	expertRepo := repository.NewExpertRepository(db)

	value := service.NewValueService(couponRepo, analysisRepo, cfg.Analysis.MinValueThreshold, logrusLogger)
	consensus := service.NewConsensusService(expertRepo, couponRepo, analysisRepo,
		nil, cfg.Experts.SourceWeights, cfg.Analysis.PredictionWindowDays, logrusLogger)
	rows := service.NewRowService(couponRepo, analysisRepo,
		cfg.Analysis.HalfCoverCloseness, cfg.Analysis.MaxHalfCovers, logrusLogger)
	pipeline := service.NewPipelineService(value, consensus, rows, logrusLogger)

	ctx := context.Background()

	var coupon *model.Coupon
	if *couponUUID != "" {
		coupon, err = couponRepo.GetByUUID(ctx, *couponUUID)
	} else {
		coupon, err = couponRepo.GetActive(ctx)
	}
	if err != nil {
		logrusLogger.Fatalf("resolve coupon: %v", err)
	}

	result, err := pipeline.Run(ctx, coupon.ID, *maxRows)
	if err != nil {
		logrusLogger.Fatalf("pipeline: %v", err)
	}

	fmt.Printf("coupon week %d %d: %d/%d matches analyzed, %d summaries, %d rows\n",
		coupon.WeekNumber, coupon.Year, result.Analyzed, result.Total,
		result.Summarized, result.RowsGenerated)

	suggestions, err := analysisRepo.ListSuggestedRows(ctx, coupon.ID, result.RowsGenerated)
	if err != nil {
		logrusLogger.Fatalf("list rows: %v", err)
	}
	for i := len(suggestions) - 1; i >= 0; i-- {
		row := suggestions[i]
		reasoning := ""
		if row.Reasoning != nil {
			reasoning = *row.Reasoning
		}
		fmt.Printf("  row %s: EV %.3f, cost %dx, %s\n",
			string(row.RowData), row.ExpectedValue, row.CostFactor, reasoning)
	}
}
