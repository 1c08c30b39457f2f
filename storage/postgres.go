package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/kripanshu-singh/congkong-livescore/logging"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type scoreRow struct {
	ID        string                             `gorm:"column:id;primaryKey"`
	TeamID    string                             `gorm:"column:team_id;index"`
	JudgeID   string                             `gorm:"column:judge_id;index"`
	JudgeName string                             `gorm:"column:judge_name"`
	Detail    datatypes.JSONType[map[string]int] `gorm:"column:detail;type:jsonb"`
	Total     int                                `gorm:"column:total"`
	Comment   string                             `gorm:"column:comment"`
	Signature []byte                             `gorm:"column:signature"`
	Timestamp time.Time                          `gorm:"column:timestamp"`
	Locked    bool                               `gorm:"column:locked"`
}

func (scoreRow) TableName() string { return "score_records" }

func (r scoreRow) toRecord() *ScoreRecord {
	return &ScoreRecord{
		ID:        r.ID,
		TeamID:    r.TeamID,
		JudgeID:   r.JudgeID,
		JudgeName: r.JudgeName,
		Detail:    r.Detail.Data(),
		Total:     r.Total,
		Comment:   r.Comment,
		Signature: r.Signature,
		Timestamp: r.Timestamp,
		Locked:    r.Locked,
	}
}

type documentRow struct {
	Name      string         `gorm:"column:name;primaryKey"`
	Body      datatypes.JSON `gorm:"column:body;type:jsonb"`
	UpdatedAt time.Time      `gorm:"column:updated_at"`
}

func (documentRow) TableName() string { return "documents" }

type codeRow struct {
	Code      string    `gorm:"column:code;primaryKey"`
	CreatedAt time.Time `gorm:"column:created_at"`
	Used      bool      `gorm:"column:used"`
}

func (codeRow) TableName() string { return "voting_codes" }

type voteRow struct {
	Code      string    `gorm:"column:code;primaryKey"`
	SortKey   string    `gorm:"column:sort_key;primaryKey"`
	TeamID    string    `gorm:"column:team_id;index"`
	Rating    int       `gorm:"column:rating"`
	Timestamp time.Time `gorm:"column:timestamp"`
}

func (voteRow) TableName() string { return "audience_votes" }

// NewPostgresBackend opens dsn with gorm and migrates the four tables.
func NewPostgresBackend(dsn string) (*Backend, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		logging.Log.Errorf("POSTGRES: failed to open database: %v", err)
		return nil, err
	}
	return NewPostgresBackendWithDB(db)
}

func NewPostgresBackendWithDB(db *gorm.DB) (*Backend, error) {
	if err := db.AutoMigrate(&scoreRow{}, &documentRow{}, &codeRow{}, &voteRow{}); err != nil {
		logging.Log.Errorf("POSTGRES: auto-migrate failed: %v", err)
		return nil, err
	}
	return &Backend{
		Scores:    &PostgresScoreStorage{DB: db},
		Documents: &PostgresDocumentStorage{DB: db},
		Codes:     &PostgresVotingCodeStorage{DB: db},
		Votes:     &PostgresAudienceVoteStorage{DB: db},
	}, nil
}

type PostgresScoreStorage struct {
	DB *gorm.DB
}

func (s *PostgresScoreStorage) Get(ctx context.Context, id string) (*ScoreRecord, error) {
	var row scoreRow
	err := s.DB.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		logging.Log.Errorf("SCORE: postgres get %s failed: %v", id, err)
		return nil, err
	}
	return row.toRecord(), nil
}

func (s *PostgresScoreStorage) GetAll(ctx context.Context) ([]*ScoreRecord, error) {
	var rows []scoreRow
	if err := s.DB.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		logging.Log.Errorf("SCORE: postgres list failed: %v", err)
		return nil, err
	}
	out := make([]*ScoreRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toRecord())
	}
	return out, nil
}

func (s *PostgresScoreStorage) Put(ctx context.Context, record *ScoreRecord) error {
	row := scoreRow{
		ID:        record.ID,
		TeamID:    record.TeamID,
		JudgeID:   record.JudgeID,
		JudgeName: record.JudgeName,
		Detail:    datatypes.NewJSONType(record.Detail),
		Total:     record.Total,
		Comment:   record.Comment,
		Signature: record.Signature,
		Timestamp: record.Timestamp,
		Locked:    record.Locked,
	}
	err := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		Create(&row).Error
	if err != nil {
		logging.Log.Errorf("SCORE: postgres upsert %s failed: %v", record.ID, err)
	}
	return err
}

func (s *PostgresScoreStorage) DeleteAll(ctx context.Context) error {
	return s.DB.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&scoreRow{}).Error
}

type PostgresDocumentStorage struct {
	DB *gorm.DB
}

func (s *PostgresDocumentStorage) Load(ctx context.Context, name string, out any) error {
	var row documentRow
	err := s.DB.WithContext(ctx).First(&row, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrDocumentNotFound
	}
	if err != nil {
		logging.Log.Errorf("DOCUMENT: postgres load %s failed: %v", name, err)
		return err
	}
	return json.Unmarshal(row.Body, out)
}

func (s *PostgresDocumentStorage) Save(ctx context.Context, name string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	row := documentRow{Name: name, Body: datatypes.JSON(raw), UpdatedAt: time.Now().UTC()}
	err = s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, UpdateAll: true}).
		Create(&row).Error
	if err != nil {
		logging.Log.Errorf("DOCUMENT: postgres save %s failed: %v", name, err)
	}
	return err
}

type PostgresVotingCodeStorage struct {
	DB *gorm.DB
}

func (s *PostgresVotingCodeStorage) Get(ctx context.Context, code string) (*VotingCode, error) {
	var row codeRow
	err := s.DB.WithContext(ctx).First(&row, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &VotingCode{Code: row.Code, CreatedAt: row.CreatedAt, Used: row.Used}, nil
}

func (s *PostgresVotingCodeStorage) GetAll(ctx context.Context) ([]*VotingCode, error) {
	var rows []codeRow
	if err := s.DB.WithContext(ctx).Order("code").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*VotingCode, 0, len(rows))
	for _, r := range rows {
		out = append(out, &VotingCode{Code: r.Code, CreatedAt: r.CreatedAt, Used: r.Used})
	}
	return out, nil
}

func (s *PostgresVotingCodeStorage) Put(ctx context.Context, code *VotingCode) error {
	if code.CreatedAt.IsZero() {
		code.CreatedAt = time.Now().UTC()
	}
	code.Used = false
	res := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&codeRow{Code: code.Code, CreatedAt: code.CreatedAt})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrItemWithIDAlreadyExists
	}
	return nil
}

func (s *PostgresVotingCodeStorage) ResetAll(ctx context.Context) (int, error) {
	res := s.DB.WithContext(ctx).Model(&codeRow{}).Where("used = ?", true).Update("used", false)
	return int(res.RowsAffected), res.Error
}

func (s *PostgresVotingCodeStorage) Delete(ctx context.Context, code string) error {
	return s.DB.WithContext(ctx).Delete(&codeRow{}, "code = ?", code).Error
}

type PostgresAudienceVoteStorage struct {
	DB *gorm.DB
}

func (r voteRow) toVote() *AudienceVote {
	return &AudienceVote{Code: r.Code, SortKey: r.SortKey, TeamID: r.TeamID, Rating: r.Rating, Timestamp: r.Timestamp}
}

func (s *PostgresAudienceVoteStorage) GetAll(ctx context.Context) ([]*AudienceVote, error) {
	var rows []voteRow
	if err := s.DB.WithContext(ctx).Order("code, sort_key").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*AudienceVote, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toVote())
	}
	return out, nil
}

func (s *PostgresAudienceVoteStorage) Cast(ctx context.Context, code string, votes []*AudienceVote) error {
	rows := make([]voteRow, 0, len(votes))
	for _, v := range votes {
		rows = append(rows, voteRow{Code: v.Code, SortKey: v.SortKey, TeamID: v.TeamID, Rating: v.Rating, Timestamp: v.Timestamp})
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&codeRow{}).
			Where("code = ? AND used = ?", code, false).
			Update("used", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if len(rows) == 0 {
			return nil
		}

		res = tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows)
		if res.Error != nil {
			return res.Error
		}
		if int(res.RowsAffected) != len(rows) {
			return ErrItemWithIDAlreadyExists
		}
		return nil
	})
}

func (s *PostgresAudienceVoteStorage) GetByCode(ctx context.Context, code string) ([]*AudienceVote, error) {
	var rows []voteRow
	if err := s.DB.WithContext(ctx).Where("code = ?", code).Order("sort_key").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*AudienceVote, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toVote())
	}
	return out, nil
}

func (s *PostgresAudienceVoteStorage) DeleteAll(ctx context.Context) error {
	return s.DB.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&voteRow{}).Error
}
