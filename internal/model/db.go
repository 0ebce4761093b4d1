package model

import "gorm.io/gorm"

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Block{}); err != nil {
		return err
	}

	if err := db.AutoMigrate(&ClickEvent{}); err != nil {
		return err
	}

	if err := db.AutoMigrate(&LandingBlock{}); err != nil {
		return err
	}

	return nil
}
