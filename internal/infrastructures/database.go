package infrastructures

import (
	"os"

	"github.com/archivest/retain-core/internal/app/models"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func NewDatabase() *gorm.DB {
	db, err := gorm.Open(postgres.Open(os.Getenv("DATABASE_URL")), &gorm.Config{TranslateError: true})
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err)
	}

	err = db.AutoMigrate(
		&models.LegalCitation{},
		&models.RecordSeries{},
		&models.RetentionPolicy{},
		&models.RetentionPolicyVersion{},
		&models.CustodyTransferEvent{},
		&models.DestructionRecord{},
		&models.DestructionItem{},
		&models.AuditLogEntry{},
	)
	if err != nil {
		logrus.Fatalf("failed to migrate database: %v", err)
	}

	return db
}
