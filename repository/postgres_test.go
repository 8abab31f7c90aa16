package repository

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lizet96/hospital-appointments/apperr"
	"github.com/lizet96/hospital-appointments/database"
	"github.com/lizet96/hospital-appointments/models"
	"github.com/rs/zerolog"
)

// newTestStore connects to TEST_DATABASE_URL and empties every table.
// The tests are skipped when the variable is not set.
func newTestStore(t *testing.T) (*Postgres, *pgxpool.Pool) {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := database.Connect(ctx, url, 4, 1, zerolog.Nop())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := database.Migrate(ctx, pool); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	_, err = pool.Exec(ctx, `TRUNCATE prescriptions, appointments, appointment_requests,
		doctors, nurses, users, contact_messages, logs RESTART IDENTITY CASCADE`)
	if err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return NewPostgres(pool), pool
}

type fixture struct {
	doctor *models.Doctor
	nurse  *models.Nurse
}

func seedStaff(t *testing.T, s *Postgres) fixture {
	t.Helper()
	ctx := context.Background()
	d, err := s.CreateDoctor(ctx, models.CreateDoctorRequest{
		Name: "Dr. Grey", Department: "Cardiology", Contact: "555-0101",
		Email: "Grey@Hospital.test", Password: "secret1",
	}, "hash")
	if err != nil {
		t.Fatalf("create doctor: %v", err)
	}
	n, err := s.CreateNurse(ctx, models.CreateNurseRequest{
		Name: "Nurse Joy", Contact: "555-0102", Email: "joy@hospital.test", Password: "secret1",
	}, "hash")
	if err != nil {
		t.Fatalf("create nurse: %v", err)
	}
	return fixture{doctor: d, nurse: n}
}

func newRequest(name string) *models.AppointmentRequest {
	return &models.AppointmentRequest{
		Name: name, Contact: "555-1234", AppointmentDate: "2030-05-01T00:00:00.000Z",
		AppointmentTime: "10:30", Gender: "female", Age: 34, Department: "Cardiology",
	}
}

func approval(req *models.AppointmentRequest, f fixture, critical string) models.ApproveRequest {
	return models.ApproveRequest{
		RequestID: models.FlexInt(req.RequestID), PatientName: req.Name, PatientContact: req.Contact,
		DoctorID: models.FlexInt(f.doctor.DoctorID), NurseID: models.FlexInt(f.nurse.NurseID),
		AppointmentDate: req.AppointmentDate, AppointmentTime: req.AppointmentTime,
		Gender: req.Gender, Age: req.Age, Critical: critical,
	}
}

func TestCreateRequestAppearsOncePending(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	req := newRequest("Ana Lopez")
	id, err := s.CreateRequest(ctx, req)
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}

	pending, err := s.ListRequests(ctx, models.RequestPending)
	if err != nil {
		t.Fatalf("ListRequests: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending = %d, want 1", len(pending))
	}
	got := pending[0]
	if got.RequestID != id || got.Name != "Ana Lopez" || got.AppointmentDate != "2030-05-01" ||
		got.Age != 34 || got.RequestStatus != models.RequestPending {
		t.Errorf("unexpected request %+v", got)
	}
}

func TestApproveRequestCreatesOneAppointment(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	f := seedStaff(t, s)

	req := newRequest("Ana Lopez")
	if _, err := s.CreateRequest(ctx, req); err != nil {
		t.Fatal(err)
	}

	apptID, err := s.ApproveRequest(ctx, approval(req, f, models.CriticalHigh))
	if err != nil {
		t.Fatalf("ApproveRequest: %v", err)
	}

	pending, _ := s.ListRequests(ctx, models.RequestPending)
	if len(pending) != 0 {
		t.Errorf("request still pending after approval")
	}
	appts, err := s.ListAppointments(ctx, models.AppointmentFilter{DoctorID: f.doctor.DoctorID})
	if err != nil {
		t.Fatal(err)
	}
	if len(appts) != 1 {
		t.Fatalf("appointments = %d, want 1", len(appts))
	}
	a := appts[0]
	if a.AppointmentID != apptID || a.DoctorID != f.doctor.DoctorID || a.Critical != models.CriticalHigh {
		t.Errorf("unexpected appointment %+v", a)
	}
	if a.PaymentStatus != models.PaymentUnpaid || a.PaymentType != nil {
		t.Errorf("new appointment should be unpaid without a method, got %+v", a)
	}
	if a.SourceRequestID == nil || *a.SourceRequestID != req.RequestID {
		t.Errorf("source_request_id = %v, want %d", a.SourceRequestID, req.RequestID)
	}

	// A second approval is rejected and books nothing.
	_, err = s.ApproveRequest(ctx, approval(req, f, models.CriticalLow))
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("second approval err = %v, want conflict", err)
	}
	appts, _ = s.ListAppointments(ctx, models.AppointmentFilter{})
	if len(appts) != 1 {
		t.Errorf("appointments after second approval = %d, want 1", len(appts))
	}
}

func TestApproveRollsBackOnUnknownDoctor(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	f := seedStaff(t, s)

	req := newRequest("Ana Lopez")
	if _, err := s.CreateRequest(ctx, req); err != nil {
		t.Fatal(err)
	}
	in := approval(req, f, models.CriticalMid)
	in.DoctorID = 9999

	if _, err := s.ApproveRequest(ctx, in); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
	pending, _ := s.ListRequests(ctx, models.RequestPending)
	if len(pending) != 1 {
		t.Errorf("request must stay pending after a failed approval")
	}
}

func TestApproveUnknownRequest(t *testing.T) {
	s, _ := newTestStore(t)
	f := seedStaff(t, s)
	req := newRequest("Nobody")
	req.RequestID = 4242

	if _, err := s.ApproveRequest(context.Background(), approval(req, f, models.CriticalLow)); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestAddPrescriptionsCountsRows(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	f := seedStaff(t, s)
	req := newRequest("Ana Lopez")
	s.CreateRequest(ctx, req)
	apptID, err := s.ApproveRequest(ctx, approval(req, f, models.CriticalLow))
	if err != nil {
		t.Fatal(err)
	}

	view, err := s.GetPrescription(ctx, apptID)
	if err != nil {
		t.Fatalf("GetPrescription: %v", err)
	}
	if len(view.Medicines) != 0 || view.DoctorName != "Dr. Grey" {
		t.Errorf("fresh appointment view = %+v", view)
	}

	meds := []models.Medicine{
		{MedicineName: "Aspirin", MedicineDosage: "100mg"},
		{MedicineName: "Atorvastatin", MedicineDosage: "20mg"},
		{MedicineName: "Metoprolol", MedicineDosage: "50mg"},
	}
	n, err := s.AddPrescriptions(ctx, apptID, f.doctor.DoctorID, meds)
	if err != nil {
		t.Fatalf("AddPrescriptions: %v", err)
	}
	if n != 3 {
		t.Errorf("rows = %d, want 3", n)
	}

	if _, err := s.AddPrescriptions(ctx, apptID, f.doctor.DoctorID, nil); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("empty list err = %v, want validation", err)
	}
	if _, err := s.AddPrescriptions(ctx, apptID, f.doctor.DoctorID+100, meds); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("foreign doctor err = %v, want forbidden", err)
	}

	view, _ = s.GetPrescription(ctx, apptID)
	if len(view.Medicines) != 3 {
		t.Errorf("entries = %d, want 3", len(view.Medicines))
	}

	if _, err := s.GetPrescription(ctx, apptID+50); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing appointment err = %v, want not found", err)
	}
}

func TestDeleteAppointmentRemovesRequest(t *testing.T) {
	s, pool := newTestStore(t)
	ctx := context.Background()
	f := seedStaff(t, s)
	req := newRequest("Ana Lopez")
	s.CreateRequest(ctx, req)
	apptID, err := s.ApproveRequest(ctx, approval(req, f, models.CriticalLow))
	if err != nil {
		t.Fatal(err)
	}
	s.AddPrescriptions(ctx, apptID, 0, []models.Medicine{{MedicineName: "Aspirin", MedicineDosage: "100mg"}})

	if _, err := s.DeleteAppointment(ctx, apptID, f.doctor.DoctorID+1); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("delete by another doctor err = %v, want not found", err)
	}

	res, err := s.DeleteAppointment(ctx, apptID, f.doctor.DoctorID)
	if err != nil {
		t.Fatalf("DeleteAppointment: %v", err)
	}
	if res.AppointmentsRemoved != 1 || res.RequestsRemoved != 1 {
		t.Errorf("result = %+v", res)
	}
	appts, _ := s.ListAppointments(ctx, models.AppointmentFilter{DoctorID: f.doctor.DoctorID})
	if len(appts) != 0 {
		t.Errorf("appointment still listed")
	}
	var left int
	pool.QueryRow(ctx, "SELECT COUNT(*) FROM prescriptions").Scan(&left)
	if left != 0 {
		t.Errorf("prescriptions left = %d", left)
	}

	if _, err := s.DeleteAppointment(ctx, apptID, 0); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete err = %v, want not found", err)
	}
}

func TestDeleteLegacyAppointmentWithoutRequest(t *testing.T) {
	s, pool := newTestStore(t)
	ctx := context.Background()
	f := seedStaff(t, s)

	var apptID int
	err := pool.QueryRow(ctx, `INSERT INTO appointments
		(patient_name, patient_contact, doctor_id, appointment_date, appointment_time, gender, age, critical)
		VALUES ('Walk In', '555-9999', $1, '2030-01-01', '09:00', 'male', 50, 'low') RETURNING appointment_id`,
		f.doctor.DoctorID).Scan(&apptID)
	if err != nil {
		t.Fatal(err)
	}

	res, err := s.DeleteAppointment(ctx, apptID, 0)
	if err != nil {
		t.Fatalf("DeleteAppointment: %v", err)
	}
	if res.AppointmentsRemoved != 1 || res.RequestsRemoved != 0 {
		t.Errorf("result = %+v, want 1 appointment and 0 requests", res)
	}
}

func TestUpdatePaymentIsIdempotent(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	f := seedStaff(t, s)
	req := newRequest("Ana Lopez")
	s.CreateRequest(ctx, req)
	apptID, _ := s.ApproveRequest(ctx, approval(req, f, models.CriticalLow))

	in := models.PaymentUpdate{
		AppointmentID: models.FlexInt(apptID), PaymentStatus: models.PaymentPaid,
		Amount: 120.456, PaymentMethod: models.PaymentCard,
	}
	var states []models.Appointment
	for i := 0; i < 2; i++ {
		n, err := s.UpdatePayment(ctx, in)
		if err != nil || n != 1 {
			t.Fatalf("UpdatePayment #%d = %d, %v", i+1, n, err)
		}
		appts, _ := s.ListAppointments(ctx, models.AppointmentFilter{})
		states = append(states, appts[0])
	}
	a, b := states[0], states[1]
	if a.PaymentStatus != b.PaymentStatus || a.PaymentAmount != b.PaymentAmount || *a.PaymentType != *b.PaymentType {
		t.Errorf("state changed between identical updates: %+v vs %+v", a, b)
	}
	if a.PaymentAmount != 120.46 {
		t.Errorf("amount = %v, want 120.46", a.PaymentAmount)
	}

	in.AppointmentID = models.FlexInt(apptID + 10)
	if _, err := s.UpdatePayment(ctx, in); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing appointment err = %v, want not found", err)
	}
}

func TestFindUserByEmail(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	f := seedStaff(t, s)

	u, err := s.FindUserByEmail(ctx, "  GREY@hospital.test ")
	if err != nil {
		t.Fatalf("FindUserByEmail: %v", err)
	}
	if u.Role != models.RoleDoctor || u.StaffID != f.doctor.DoctorID {
		t.Errorf("user = %+v", u)
	}
	if _, err := s.FindUserByEmail(ctx, "nobody@hospital.test"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown email err = %v, want not found", err)
	}

	_, err = s.CreateNurse(ctx, models.CreateNurseRequest{
		Name: "Dup", Contact: "1", Email: "joy@hospital.test", Password: "secret1",
	}, "hash")
	if !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("duplicate email err = %v, want conflict", err)
	}
}

func TestStats(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	f := seedStaff(t, s)
	r1, r2 := newRequest("A"), newRequest("B")
	s.CreateRequest(ctx, r1)
	s.CreateRequest(ctx, r2)
	apptID, _ := s.ApproveRequest(ctx, approval(r1, f, models.CriticalHigh))
	s.UpdatePayment(ctx, models.PaymentUpdate{
		AppointmentID: models.FlexInt(apptID), PaymentStatus: models.PaymentPaid, Amount: 50, PaymentMethod: models.PaymentCash,
	})

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.TotalRequests != 2 || st.PendingRequests != 1 || st.ApprovedRequests != 1 {
		t.Errorf("request stats = %+v", st)
	}
	if st.AppointmentsByLevel[models.CriticalHigh] != 1 || st.PaidAppointments != 1 || st.RevenueCollected != 50 {
		t.Errorf("appointment stats = %+v", st)
	}
	if st.TotalDoctors != 1 || st.TotalNurses != 1 {
		t.Errorf("staff stats = %+v", st)
	}
}

func TestSaveAndListLogs(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	email := "grey@hospital.test"
	entries := []models.CreateLogRequest{
		{RequestID: "r1", Method: "GET", Path: "/manage/requests", StatusCode: 200, IP: "10.0.0.1",
			LogLevel: models.LogLevelSuccess, Environment: models.EnvironmentTesting},
		{RequestID: "r2", Method: "POST", Path: "/login", StatusCode: 401, IP: "10.0.0.2", Email: &email,
			LogLevel: models.LogLevelWarning, Environment: models.EnvironmentTesting},
		{RequestID: "r3", Method: "POST", Path: "/login", StatusCode: 200, IP: "10.0.0.2", Email: &email,
			LogLevel: models.LogLevelSuccess, Environment: models.EnvironmentTesting},
	}
	for _, e := range entries {
		if err := s.SaveLog(ctx, e); err != nil {
			t.Fatalf("SaveLog: %v", err)
		}
	}

	tests := []struct {
		name   string
		filter models.LogFilter
		total  int
	}{
		{"all", models.LogFilter{}, 3},
		{"by level", models.LogFilter{LogLevel: models.LogLevelWarning}, 1},
		{"by method, any case", models.LogFilter{Method: "post"}, 2},
		{"by email fragment", models.LogFilter{Email: "grey"}, 2},
		{"by status", models.LogFilter{StatusCode: 200}, 2},
		{"by path", models.LogFilter{Path: "login"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs, total, err := s.ListLogs(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListLogs: %v", err)
			}
			if total != tt.total || len(logs) != tt.total {
				t.Errorf("total = %d, rows = %d, want %d", total, len(logs), tt.total)
			}
		})
	}

	logs, total, err := s.ListLogs(ctx, models.LogFilter{Page: 2, Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 || len(logs) != 1 || logs[0].RequestID != "r1" {
		t.Errorf("page 2 = %+v (total %d), want only the oldest entry", logs, total)
	}
}

func TestSaveContactMessage(t *testing.T) {
	s, _ := newTestStore(t)
	msg := &models.ContactMessage{Name: "Ana", Email: "ana@example.com", Subject: "Hours", Message: "When?"}
	id, err := s.SaveContactMessage(context.Background(), msg)
	if err != nil {
		t.Fatalf("SaveContactMessage: %v", err)
	}
	if id == 0 || msg.MessageID != id || msg.CreatedAt.IsZero() {
		t.Errorf("message = %+v, id %d", msg, id)
	}
}
