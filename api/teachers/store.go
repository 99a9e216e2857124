package teachers

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Teacher is an instructor record. Teachers are shared across the whole
// association, not scoped per user.
type Teacher struct {
	ID        string   `json:"id"`
	FullName  string   `json:"full_name"`
	Courses   []string `json:"courses"`
	PhotoPath *string  `json:"photo_path"`
}

// Document is a stored file attached to a teacher: the contract or a
// monthly payslip. Files live in the private storage bucket; only the path
// is persisted.
type Document struct {
	ID         string  `json:"id"`
	TeacherID  string  `json:"teacher_id"`
	Type       string  `json:"type"`
	Month      *string `json:"month"`
	FileName   string  `json:"file_name"`
	FilePath   string  `json:"file_path"`
	UploadedAt string  `json:"uploaded_at"`
}

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) List(ctx context.Context) ([]Teacher, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, full_name, COALESCE(courses, '{}'), photo_path FROM teachers ORDER BY full_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Teacher{}
	for rows.Next() {
		var t Teacher
		if err := rows.Scan(&t.ID, &t.FullName, &t.Courses, &t.PhotoPath); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) Create(ctx context.Context, fullName string, courses []string) (Teacher, error) {
	t := Teacher{FullName: fullName, Courses: courses}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO teachers (full_name, courses) VALUES ($1, $2) RETURNING id`,
		fullName, courses,
	).Scan(&t.ID)
	return t, err
}

// Update patches full_name and/or courses; nil leaves a field alone.
func (s *Store) Update(ctx context.Context, id string, fullName *string, courses []string) (Teacher, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE teachers
		 SET full_name = COALESCE($1, full_name),
		     courses = COALESCE($2, courses)
		 WHERE id = $3
		 RETURNING id, full_name, COALESCE(courses, '{}'), photo_path`,
		fullName, courses, id,
	)
	var t Teacher
	if err := row.Scan(&t.ID, &t.FullName, &t.Courses, &t.PhotoPath); err != nil {
		return Teacher{}, err
	}
	return t, nil
}

func (s *Store) SetPhotoPath(ctx context.Context, id string, path *string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE teachers SET photo_path = $1 WHERE id = $2`, path, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (s *Store) PhotoPath(ctx context.Context, id string) (*string, error) {
	var path *string
	err := s.pool.QueryRow(ctx,
		`SELECT photo_path FROM teachers WHERE id = $1`, id).Scan(&path)
	return path, err
}

func (s *Store) Documents(ctx context.Context, teacherID string) ([]Document, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, teacher_id, type, month, file_name, file_path, uploaded_at
		 FROM teacher_documents WHERE teacher_id = $1 ORDER BY uploaded_at DESC`,
		teacherID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Document{}
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.TeacherID, &d.Type, &d.Month, &d.FileName, &d.FilePath, &d.UploadedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// UpsertDocument updates the document matching (teacher, type, month) or
// inserts a new one. Contract documents carry a NULL month.
func (s *Store) UpsertDocument(ctx context.Context, teacherID, docType string, month *string, fileName, filePath string) error {
	var existingID string
	err := s.pool.QueryRow(ctx,
		`SELECT id FROM teacher_documents
		 WHERE teacher_id = $1 AND type = $2 AND month IS NOT DISTINCT FROM $3`,
		teacherID, docType, month,
	).Scan(&existingID)
	switch err {
	case nil:
		_, err = s.pool.Exec(ctx,
			`UPDATE teacher_documents
			 SET file_name = $1, file_path = $2, uploaded_at = now() WHERE id = $3`,
			fileName, filePath, existingID)
		return err
	case pgx.ErrNoRows:
		_, err = s.pool.Exec(ctx,
			`INSERT INTO teacher_documents (teacher_id, type, month, file_name, file_path)
			 VALUES ($1, $2, $3, $4, $5)`,
			teacherID, docType, month, fileName, filePath)
		return err
	default:
		return err
	}
}

func (s *Store) Document(ctx context.Context, teacherID, docID string) (Document, error) {
	var d Document
	err := s.pool.QueryRow(ctx,
		`SELECT id, teacher_id, type, month, file_name, file_path, uploaded_at
		 FROM teacher_documents WHERE id = $1 AND teacher_id = $2`,
		docID, teacherID,
	).Scan(&d.ID, &d.TeacherID, &d.Type, &d.Month, &d.FileName, &d.FilePath, &d.UploadedAt)
	return d, err
}

func (s *Store) DeleteDocument(ctx context.Context, docID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM teacher_documents WHERE id = $1`, docID)
	return err
}
