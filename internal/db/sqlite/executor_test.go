package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"
)

// ExecutorSuite exercises the query runner against a seeded database.
type ExecutorSuite struct {
	suite.Suite
	store *Store
	exec  *Executor
}

func (s *ExecutorSuite) SetupTest() {
	store, err := Open(filepath.Join(s.T().TempDir(), "contrataciones.db"))
	s.Require().NoError(err)
	s.store = store
	s.exec = NewExecutor(store)

	_, err = store.db.Exec(`
		CREATE TABLE contratos (
			id INTEGER PRIMARY KEY,
			nombre_proveedor TEXT NOT NULL,
			ruc TEXT,
			monto REAL,
			anio INTEGER
		)
	`)
	s.Require().NoError(err)
	_, err = store.db.Exec(`CREATE TABLE ordenes_servicio (id INTEGER PRIMARY KEY, descripcion TEXT)`)
	s.Require().NoError(err)

	_, err = store.db.Exec(`
		INSERT INTO contratos (nombre_proveedor, ruc, monto, anio) VALUES
		('CONSORCIO ALFA', '20481234567', 15000.50, 2022),
		('SERVICIOS BETA', '20567890123', 9800.00, 2023)
	`)
	s.Require().NoError(err)
}

func (s *ExecutorSuite) TearDownTest() {
	s.Require().NoError(s.store.Close())
}

func TestExecutorSuite(t *testing.T) {
	suite.Run(t, new(ExecutorSuite))
}

func (s *ExecutorSuite) TestDialect() {
	s.Equal("SQLite", s.exec.Dialect())
}

func (s *ExecutorSuite) TestListTables() {
	tables, err := s.exec.ListTables(context.Background())
	s.Require().NoError(err)
	s.Equal([]string{"contratos", "ordenes_servicio"}, tables)
}

func (s *ExecutorSuite) TestDescribeSchema() {
	desc, err := s.exec.DescribeSchema(context.Background(), "contratos")
	s.Require().NoError(err)
	s.Contains(desc, "Tabla contratos:")
	s.Contains(desc, "nombre_proveedor TEXT")
	s.Contains(desc, "monto REAL")
}

func (s *ExecutorSuite) TestDescribeSchemaUnknownTable() {
	_, err := s.exec.DescribeSchema(context.Background(), "inexistente")
	s.Error(err)
}

func (s *ExecutorSuite) TestDescribeSchemaRejectsBadIdentifier() {
	_, err := s.exec.DescribeSchema(context.Background(), "contratos; DROP TABLE contratos")
	s.Error(err)
	s.Contains(err.Error(), "inválido")
}

func (s *ExecutorSuite) TestRun() {
	res, err := s.exec.Run(context.Background(),
		`SELECT nombre_proveedor, monto FROM contratos WHERE anio = 2022 LIMIT 5`)
	s.Require().NoError(err)

	s.Equal([]string{"nombre_proveedor", "monto"}, res.Columns)
	s.Require().Len(res.Rows, 1)
	s.Equal("CONSORCIO ALFA", asString(res.Rows[0][0]))
	s.InDelta(15000.50, res.Rows[0][1].(float64), 0.001)
}

func (s *ExecutorSuite) TestRunEmptyResult() {
	res, err := s.exec.Run(context.Background(),
		`SELECT nombre_proveedor FROM contratos WHERE anio = 1999`)
	s.Require().NoError(err)
	s.Equal([]string{"nombre_proveedor"}, res.Columns)
	s.Empty(res.Rows)
}

func (s *ExecutorSuite) TestRunInvalidQuery() {
	_, err := s.exec.Run(context.Background(), `SELECT inexistente FROM contratos`)
	s.Error(err)
}

// asString tolerates drivers returning TEXT as either string or []byte.
func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return ""
	}
}
