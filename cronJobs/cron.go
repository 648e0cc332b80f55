package cronJobs

import (
	"github.com/simplymanage/simplymanage-server/database"
	"github.com/simplymanage/simplymanage-server/dbHelpers"
	"github.com/sirupsen/logrus"
)

// SweepOverdueLoans flips active loans past their due date to overdue.
func SweepOverdueLoans() {
	count, err := dbHelpers.MarkOverdueLoans(database.Pool(database.RoleStaff))
	if err != nil {
		logrus.Errorf("overdue sweep failed: %v", err)
		return
	}
	if count > 0 {
		logrus.Infof("overdue sweep marked %d loans", count)
	}
}
