package database

import (
	"errors"
	"fmt"

	"freelance-marketplace/config"
	"freelance-marketplace/internal/global/sentry/tracing"
	"freelance-marketplace/internal/model"
	"freelance-marketplace/tools"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

var DB *gorm.DB

// autoMigrateModels 定义需要自动迁移的模型列表
var autoMigrateModels = []any{
	&model.User{},
	&model.Category{},
	&model.Skill{},
	&model.Project{},
	&model.Proposal{},
}

// mysqlDuplicateEntry 唯一键冲突错误码
const mysqlDuplicateEntry = 1062

func Init() {
	c := config.Get().Mysql
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.Username, c.Password, c.Host, c.Port, c.DBName)
	gormLogger := logger.Discard
	if config.Get().Mode == config.ModeDebug {
		gormLogger = logger.Default.LogMode(logger.Info)
	}
	db, err := Open(mysql.Open(dsn), gormLogger)
	tools.PanicOnErr(err)
	DB = db
}

// Open 使用单数表名打开连接并自动迁移，测试中可传入 sqlite；gormLogger 同样作用于迁移语句
func Open(dialector gorm.Dialector, gormLogger logger.Interface) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		NamingStrategy: schema.NamingStrategy{SingularTable: true},
		TranslateError: true,
		Logger:         gormLogger,
	})
	if err != nil {
		return nil, err
	}
	if tracing.IsEnabled() {
		if err := db.Use(tracing.NewGormTracingPlugin()); err != nil {
			return nil, err
		}
	}
	if err := db.AutoMigrate(autoMigrateModels...); err != nil {
		return nil, err
	}
	return db, nil
}

// IsDuplicate 判断是否为唯一索引冲突
func IsDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysqldriver.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}
