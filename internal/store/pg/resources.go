package pg

import (
	"context"
	"database/sql"

	"buildsmart.in/internal/site"
)

// Task store ---------------------------------------------------------------

type taskStore struct{ db *sql.DB }

func (s *taskStore) Create(ctx context.Context, t *site.Task) error {
	_, err := s.db.ExecContext(ctx,
		`insert into tasks(id, title, description, status, priority, assigned_to, due_date, created_at, updated_at)
		 values($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		t.ID, t.Title, t.Description, t.Status, t.Priority, t.AssignedTo, t.DueDate, t.CreatedAt, t.UpdatedAt,
	)
	return err
}

func (s *taskStore) Find(ctx context.Context, id string) (*site.Task, error) {
	row := s.db.QueryRowContext(ctx,
		`select id, title, description, status, priority, assigned_to, due_date, created_at, updated_at
		 from tasks where id=$1`, id)
	var t site.Task
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.AssignedTo, &t.DueDate, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, site.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (s *taskStore) List(ctx context.Context) ([]*site.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`select id, title, description, status, priority, assigned_to, due_date, created_at, updated_at
		 from tasks order by created_at desc`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*site.Task
	for rows.Next() {
		var t site.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.AssignedTo, &t.DueDate, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		res = append(res, &t)
	}
	return res, rows.Err()
}

func (s *taskStore) Update(ctx context.Context, t *site.Task) error {
	res, err := s.db.ExecContext(ctx,
		`update tasks set title=$2, description=$3, status=$4, priority=$5, assigned_to=$6, due_date=$7, updated_at=$8
		 where id=$1`,
		t.ID, t.Title, t.Description, t.Status, t.Priority, t.AssignedTo, t.DueDate, t.UpdatedAt,
	)
	return affectedOrNotFound(res, err)
}

func (s *taskStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from tasks where id=$1`, id)
	return affectedOrNotFound(res, err)
}

// Material store -----------------------------------------------------------

type materialStore struct{ db *sql.DB }

func (s *materialStore) Create(ctx context.Context, m *site.Material) error {
	_, err := s.db.ExecContext(ctx,
		`insert into materials(id, item_name, quantity, unit, reorder_level, created_at, updated_at)
		 values($1,$2,$3,$4,$5,$6,$7)`,
		m.ID, m.ItemName, m.Quantity, m.Unit, m.ReorderLevel, m.CreatedAt, m.UpdatedAt,
	)
	return err
}

func (s *materialStore) Find(ctx context.Context, id string) (*site.Material, error) {
	row := s.db.QueryRowContext(ctx,
		`select id, item_name, quantity, unit, reorder_level, created_at, updated_at
		 from materials where id=$1`, id)
	var m site.Material
	err := row.Scan(&m.ID, &m.ItemName, &m.Quantity, &m.Unit, &m.ReorderLevel, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, site.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (s *materialStore) List(ctx context.Context) ([]*site.Material, error) {
	rows, err := s.db.QueryContext(ctx,
		`select id, item_name, quantity, unit, reorder_level, created_at, updated_at
		 from materials order by item_name asc`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*site.Material
	for rows.Next() {
		var m site.Material
		if err := rows.Scan(&m.ID, &m.ItemName, &m.Quantity, &m.Unit, &m.ReorderLevel, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		res = append(res, &m)
	}
	return res, rows.Err()
}

func (s *materialStore) Update(ctx context.Context, m *site.Material) error {
	res, err := s.db.ExecContext(ctx,
		`update materials set item_name=$2, quantity=$3, unit=$4, reorder_level=$5, updated_at=$6
		 where id=$1`,
		m.ID, m.ItemName, m.Quantity, m.Unit, m.ReorderLevel, m.UpdatedAt,
	)
	return affectedOrNotFound(res, err)
}

func (s *materialStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from materials where id=$1`, id)
	return affectedOrNotFound(res, err)
}

// Workforce store ----------------------------------------------------------

type workforceStore struct{ db *sql.DB }

func (s *workforceStore) Create(ctx context.Context, w *site.WorkforceMember) error {
	_, err := s.db.ExecContext(ctx,
		`insert into workforce(id, name, role, employee_id, attendance_status, last_check_in, productivity_score, created_at, updated_at)
		 values($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		w.ID, w.Name, w.Role, w.EmployeeID, w.AttendanceStatus, w.LastCheckIn, w.ProductivityScore, w.CreatedAt, w.UpdatedAt,
	)
	return err
}

func (s *workforceStore) Find(ctx context.Context, id string) (*site.WorkforceMember, error) {
	row := s.db.QueryRowContext(ctx,
		`select id, name, role, employee_id, attendance_status, last_check_in, productivity_score, created_at, updated_at
		 from workforce where id=$1`, id)
	var w site.WorkforceMember
	err := row.Scan(&w.ID, &w.Name, &w.Role, &w.EmployeeID, &w.AttendanceStatus, &w.LastCheckIn, &w.ProductivityScore, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, site.ErrNotFound
		}
		return nil, err
	}
	return &w, nil
}

func (s *workforceStore) List(ctx context.Context) ([]*site.WorkforceMember, error) {
	rows, err := s.db.QueryContext(ctx,
		`select id, name, role, employee_id, attendance_status, last_check_in, productivity_score, created_at, updated_at
		 from workforce order by name asc`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*site.WorkforceMember
	for rows.Next() {
		var w site.WorkforceMember
		if err := rows.Scan(&w.ID, &w.Name, &w.Role, &w.EmployeeID, &w.AttendanceStatus, &w.LastCheckIn, &w.ProductivityScore, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, err
		}
		res = append(res, &w)
	}
	return res, rows.Err()
}

func (s *workforceStore) Update(ctx context.Context, w *site.WorkforceMember) error {
	res, err := s.db.ExecContext(ctx,
		`update workforce set name=$2, role=$3, employee_id=$4, attendance_status=$5, last_check_in=$6, productivity_score=$7, updated_at=$8
		 where id=$1`,
		w.ID, w.Name, w.Role, w.EmployeeID, w.AttendanceStatus, w.LastCheckIn, w.ProductivityScore, w.UpdatedAt,
	)
	return affectedOrNotFound(res, err)
}

func (s *workforceStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from workforce where id=$1`, id)
	return affectedOrNotFound(res, err)
}

// Safety store -------------------------------------------------------------

type safetyStore struct{ db *sql.DB }

func (s *safetyStore) Create(ctx context.Context, a *site.SafetyAlert) error {
	_, err := s.db.ExecContext(ctx,
		`insert into safety_alerts(id, type, severity, description, resolved, occurred_at, created_at)
		 values($1,$2,$3,$4,$5,$6,$7)`,
		a.ID, a.Type, a.Severity, a.Description, a.Resolved, a.Timestamp, a.CreatedAt,
	)
	return err
}

func (s *safetyStore) Find(ctx context.Context, id string) (*site.SafetyAlert, error) {
	row := s.db.QueryRowContext(ctx,
		`select id, type, severity, description, resolved, occurred_at, created_at
		 from safety_alerts where id=$1`, id)
	var a site.SafetyAlert
	err := row.Scan(&a.ID, &a.Type, &a.Severity, &a.Description, &a.Resolved, &a.Timestamp, &a.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, site.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (s *safetyStore) List(ctx context.Context) ([]*site.SafetyAlert, error) {
	rows, err := s.db.QueryContext(ctx,
		`select id, type, severity, description, resolved, occurred_at, created_at
		 from safety_alerts order by created_at desc`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*site.SafetyAlert
	for rows.Next() {
		var a site.SafetyAlert
		if err := rows.Scan(&a.ID, &a.Type, &a.Severity, &a.Description, &a.Resolved, &a.Timestamp, &a.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, &a)
	}
	return res, rows.Err()
}

func (s *safetyStore) Update(ctx context.Context, a *site.SafetyAlert) error {
	res, err := s.db.ExecContext(ctx,
		`update safety_alerts set type=$2, severity=$3, description=$4, resolved=$5, occurred_at=$6
		 where id=$1`,
		a.ID, a.Type, a.Severity, a.Description, a.Resolved, a.Timestamp,
	)
	return affectedOrNotFound(res, err)
}

func (s *safetyStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from safety_alerts where id=$1`, id)
	return affectedOrNotFound(res, err)
}

func affectedOrNotFound(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return site.ErrNotFound
	}
	return nil
}
