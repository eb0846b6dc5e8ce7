package database

import (
	"fmt"
	"log"
	"quiz_game_backend/internal/config"
	"quiz_game_backend/internal/model"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dbCfg := &cfg.Database
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		dbCfg.User,
		dbCfg.Password,
		dbCfg.Host,
		dbCfg.Port,
		dbCfg.DBName,
		dbCfg.Charset,
		dbCfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	err = db.AutoMigrate(
		&model.Department{},
		&model.User{},
		&model.Quiz{},
		&model.Question{},
		&model.UserQuizProgress{},
		&model.QuizSession{},
		&model.Answer{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	if err := seedDefaults(db, cfg); err != nil {
		return nil, err
	}

	return db, nil
}

// seedDefaults 库为空时写入默认部门和管理员账号
func seedDefaults(db *gorm.DB, cfg *config.Config) error {
	var deptCount int64
	db.Model(&model.Department{}).Count(&deptCount)
	if deptCount == 0 {
		defaultDepartments := []model.Department{
			{Code: "IT", Name: "IT部", Order: 1},
			{Code: "HR", Name: "人事部", Order: 2},
			{Code: "FINANCE", Name: "财务部", Order: 3},
			{Code: "LOAN", Name: "信贷部", Order: 4},
			{Code: "DEPOSIT", Name: "存款部", Order: 5},
		}
		for _, d := range defaultDepartments {
			if err := db.Create(&d).Error; err != nil {
				return err
			}
		}
		log.Printf("Seeded %d default departments", len(defaultDepartments))
	}

	var userCount int64
	db.Model(&model.User{}).Count(&userCount)
	if userCount == 0 && cfg.Admin.EmployeeID != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.Admin.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		var firstDept model.Department
		if err := db.Order("`order` asc").First(&firstDept).Error; err != nil {
			return err
		}

		admin := model.User{
			EmployeeID:   cfg.Admin.EmployeeID,
			Name:         "Administrator",
			Password:     string(hashed),
			DepartmentID: firstDept.ID,
			Role:         model.RoleAdmin,
			IsActive:     true,
		}
		if err := db.Create(&admin).Error; err != nil {
			return err
		}
		log.Printf("Seeded admin account %s", admin.EmployeeID)
	}

	return nil
}
