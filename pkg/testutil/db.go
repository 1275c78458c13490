package testutil

import (
	"database/sql"
	"os"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	. "github.com/smartystreets/goconvey/convey"
)

const (
	// EnvVarMySQLTest is the environment var, which must be present to run
	// MySQL tests
	EnvVarMySQLTest = "CROWDD_MYSQLTEST"
	// EnvVarMySQLTestCrowdDSN holds the DSN for the test crowdfunding database
	EnvVarMySQLTestCrowdDSN = "CROWDD_MYSQLTEST_CROWDDSN"
)

// WithCrowdDB is a test decorator providing a DB connection to the test
// crowdfunding DB
func WithCrowdDB(t *testing.T, f func(db *sql.DB)) func() {
	return func() {
		if os.Getenv(EnvVarMySQLTest) == "" {
			t.Skip("Skipping MySQL test")
			return
		}
		if os.Getenv(EnvVarMySQLTestCrowdDSN) == "" {
			t.Skip("No crowd DB DSN present. Skipping.")
			return
		}
		db, err := sql.Open("mysql", os.Getenv(EnvVarMySQLTestCrowdDSN))

		So(err, ShouldBeNil)
		So(db, ShouldNotBeNil)

		err = db.Ping()
		So(err, ShouldBeNil)

		f(db)

		Reset(func() {
			err = db.Close()
			So(err, ShouldBeNil)
		})
	}
}
