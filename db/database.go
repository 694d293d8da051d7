package db

import "gorm.io/gorm"

type Database interface {
	GetDB() *gorm.DB
	Dialect() string
	Close() error
}

type GormDatabase struct {
	DB *gorm.DB
}

func (g *GormDatabase) GetDB() *gorm.DB { return g.DB }

func (g *GormDatabase) Dialect() string { return g.DB.Dialector.Name() }

func (g *GormDatabase) Close() error {
	sqlDB, err := g.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
