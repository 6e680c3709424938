package main

import (
	"github.com/pacekeeper/pacekeeper/config"
	"github.com/pacekeeper/pacekeeper/models"
	"github.com/pacekeeper/pacekeeper/routes"
	"github.com/pacekeeper/pacekeeper/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Streak{},
		&models.DailyTarget{},
		&models.Workout{},
		&models.ShopItem{},
		&models.Purchase{},
		&models.APIHit{},
	)

	r := routes.SetupRouter(db)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
