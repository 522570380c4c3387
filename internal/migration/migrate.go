package migration

import (
	"github.com/damoang/angple-cms/internal/domain"
	"gorm.io/gorm"
)

// Models lists every CMS table in creation order
func Models() []interface{} {
	return []interface{}{
		&domain.User{},
		&domain.ContentType{},
		&domain.Content{},
		&domain.Revision{},
		&domain.FormSubmission{},
		&domain.Media{},
		&domain.SiteContent{},
		&domain.Webhook{},
	}
}

// Run executes AutoMigrate for the CMS tables and repairs legacy rows.
func Run(db *gorm.DB) error {
	// 1. AutoMigrate - 테이블 없으면 생성, 있으면 컬럼/인덱스 보강
	if err := db.AutoMigrate(Models()...); err != nil {
		return err
	}

	// 2. unique (site_id, content_type_id, slug) 인덱스는 빈 slug를 허용하지 않음
	if _, err := BackfillSlugs(db); err != nil {
		return err
	}

	// 3. 제목 검색 컬럼 채우기
	_, err := BackfillTitleSearch(db)
	return err
}

// BackfillTitleSearch fills title_search on rows written before the column existed.
// Folding happens in Go, so it runs in batches instead of one UPDATE.
func BackfillTitleSearch(db *gorm.DB) (int64, error) {
	var repaired int64
	var rows []domain.Content
	res := db.Model(&domain.Content{}).
		Select("id", "title").
		Where(missingTitleSearch).
		FindInBatches(&rows, 200, func(_ *gorm.DB, _ int) error {
			for _, row := range rows {
				err := db.Model(&domain.Content{}).
					Where("id = ?", row.ID).
					UpdateColumn("title_search", domain.FoldTitle(row.Title)).Error
				if err != nil {
					return err
				}
				repaired++
			}
			return nil
		})
	return repaired, res.Error
}

// CountMissingTitleSearch counts rows BackfillTitleSearch would repair
func CountMissingTitleSearch(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(&domain.Content{}).Where(missingTitleSearch).Count(&count).Error
	return count, err
}

const missingTitleSearch = "(title_search IS NULL OR title_search = '') AND title <> ''"

// BackfillSlugs sets slug = content_id on rows whose slug is empty or null.
// Returns the number of repaired rows.
func BackfillSlugs(db *gorm.DB) (int64, error) {
	res := db.Model(&domain.Content{}).
		Where("slug IS NULL OR slug = ''").
		Update("slug", gorm.Expr("content_id"))
	return res.RowsAffected, res.Error
}

// CountMissingSlugs counts rows BackfillSlugs would repair
func CountMissingSlugs(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(&domain.Content{}).Where("slug IS NULL OR slug = ''").Count(&count).Error
	return count, err
}
