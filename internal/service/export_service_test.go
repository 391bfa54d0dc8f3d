package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/teachspace-api/pkg/errors"
)

func TestExportRosterCSV(t *testing.T) {
	f := newEnrollmentFixture()
	ctx := context.Background()
	_, err := f.svc.Enroll(ctx, "c1", EnrollRequest{TraineeID: "t2", Degree: degree(30)})
	require.NoError(t, err)
	_, err = f.svc.Enroll(ctx, "c1", EnrollRequest{TraineeID: "3f2a9c10-aaaa-bbbb", Degree: degree(75)})
	require.NoError(t, err)

	svc := NewExportService(f.enrollments, f.courses, zap.NewNop())
	file, err := svc.Roster(ctx, "c1", "csv", "")
	require.NoError(t, err)
	assert.Equal(t, "go-basics-results.csv", file.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)
	assert.Equal(t,
		"Trainee,Department,Degree,Max Degree,Status\nAhmed,Engineering,30,100,FAIL\nSara,Engineering,75,100,PASS\n",
		string(file.Data))
}

func TestExportRosterPDF(t *testing.T) {
	f := newEnrollmentFixture()
	svc := NewExportService(f.enrollments, f.courses, nil)

	file, err := svc.Roster(context.Background(), "c1", "PDF", "department")
	require.NoError(t, err)
	assert.Equal(t, "go-basics-results.pdf", file.Filename)
	assert.True(t, bytes.HasPrefix(file.Data, []byte("%PDF")))
}

func TestExportRosterErrors(t *testing.T) {
	f := newEnrollmentFixture()
	svc := NewExportService(f.enrollments, f.courses, nil)
	ctx := context.Background()

	_, err := svc.Roster(ctx, "c1", "xlsx", "")
	require.Error(t, err)
	assert.Contains(t, appErrors.FromError(err).Fields, "format")

	_, err = svc.Roster(ctx, "missing", "csv", "")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestRosterFilename(t *testing.T) {
	assert.Equal(t, "c-programming-101-results", rosterFilename("C# Programming 101"))
	assert.Equal(t, "course-results", rosterFilename("!!!"))
}
