package handlers_test

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lizet96/hospital-appointments/apperr"
	"github.com/lizet96/hospital-appointments/models"
	"github.com/lizet96/hospital-appointments/repository"
	"golang.org/x/crypto/bcrypt"
)

// fakeStore keeps the whole lifecycle in memory with the same error kinds
// as the postgres store
type fakeStore struct {
	mu sync.Mutex

	nextID        int
	requests      map[int]*models.AppointmentRequest
	appointments  map[int]*models.Appointment
	prescriptions []models.PrescriptionEntry
	doctors       []models.Doctor
	nurses        []models.Nurse
	users         []*models.User
	contacts      []models.ContactMessage
	logs          []models.Log

	// failStatusUpdate makes the second statement of an approval fail
	failStatusUpdate bool
}

var _ repository.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		requests:     make(map[int]*models.AppointmentRequest),
		appointments: make(map[int]*models.Appointment),
	}
}

func (f *fakeStore) id() int {
	f.nextID++
	return f.nextID
}

func hash(password string) string {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return string(h)
}

func (f *fakeStore) addUser(email, passwordHash, role string, staffID int) *models.User {
	u := &models.User{
		UserID:       f.id(),
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		StaffID:      staffID,
		CreatedAt:    time.Now(),
	}
	f.users = append(f.users, u)
	return u
}

func (f *fakeStore) emailTaken(email string) bool {
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

func (f *fakeStore) hasDoctor(id int) bool {
	for _, d := range f.doctors {
		if d.DoctorID == id {
			return true
		}
	}
	return false
}

func (f *fakeStore) hasNurse(id int) bool {
	for _, n := range f.nurses {
		if n.NurseID == id {
			return true
		}
	}
	return false
}

func (f *fakeStore) CreateRequest(_ context.Context, req *models.AppointmentRequest) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := *req
	r.RequestID = f.id()
	r.AppointmentDate = models.NormalizeDate(r.AppointmentDate)
	r.RequestStatus = models.RequestPending
	r.CreatedAt = time.Now()
	f.requests[r.RequestID] = &r
	*req = r
	return r.RequestID, nil
}

func (f *fakeStore) ListRequests(_ context.Context, status string) ([]models.AppointmentRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.AppointmentRequest
	for _, r := range f.requests {
		if status == "" || r.RequestStatus == status {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestID < out[j].RequestID })
	return out, nil
}

func (f *fakeStore) ApproveRequest(_ context.Context, in models.ApproveRequest) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	requestID := int(in.RequestID)
	r, ok := f.requests[requestID]
	if !ok {
		return 0, apperr.NotFound("request")
	}
	if r.RequestStatus != models.RequestPending {
		return 0, fmt.Errorf("%w: request %d is already %s", apperr.ErrConflict, requestID, r.RequestStatus)
	}
	if !f.hasDoctor(int(in.DoctorID)) || (in.NurseID != 0 && !f.hasNurse(int(in.NurseID))) {
		return 0, apperr.NotFound("doctor or nurse")
	}
	if f.failStatusUpdate {
		return 0, apperr.Partial("appointment not booked, failed to update request status", fmt.Errorf("connection reset"))
	}

	a := &models.Appointment{
		AppointmentID:   f.id(),
		SourceRequestID: &requestID,
		PatientName:     in.PatientName,
		PatientContact:  in.PatientContact,
		DoctorID:        int(in.DoctorID),
		AppointmentDate: models.NormalizeDate(in.AppointmentDate),
		AppointmentTime: in.AppointmentTime,
		Gender:          in.Gender,
		Age:             int(in.Age),
		Critical:        in.Critical,
		PaymentStatus:   models.PaymentUnpaid,
		CreatedAt:       time.Now(),
	}
	if in.NurseID != 0 {
		nurseID := int(in.NurseID)
		a.NurseID = &nurseID
	}
	f.appointments[a.AppointmentID] = a
	r.RequestStatus = models.RequestApproved
	return a.AppointmentID, nil
}

func (f *fakeStore) ListAppointments(_ context.Context, filter models.AppointmentFilter) ([]models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Appointment
	for _, a := range f.appointments {
		if filter.DoctorID != 0 && a.DoctorID != filter.DoctorID {
			continue
		}
		if filter.NurseID != 0 && (a.NurseID == nil || *a.NurseID != filter.NurseID) {
			continue
		}
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AppointmentID < out[j].AppointmentID })
	return out, nil
}

func (f *fakeStore) UpdatePayment(_ context.Context, in models.PaymentUpdate) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.appointments[int(in.AppointmentID)]
	if !ok {
		return 0, apperr.NotFound("appointment")
	}
	method := in.PaymentMethod
	a.PaymentStatus = in.PaymentStatus
	a.PaymentAmount = float64(in.Amount)
	a.PaymentType = &method
	return 1, nil
}

func (f *fakeStore) DeleteAppointment(_ context.Context, appointmentID, doctorID int) (models.DeleteResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var res models.DeleteResult
	a, ok := f.appointments[appointmentID]
	if !ok || (doctorID != 0 && a.DoctorID != doctorID) {
		return res, apperr.NotFound("appointment")
	}
	delete(f.appointments, appointmentID)
	res.AppointmentsRemoved = 1

	kept := f.prescriptions[:0]
	for _, p := range f.prescriptions {
		if p.AppointmentID != appointmentID {
			kept = append(kept, p)
		}
	}
	f.prescriptions = kept

	if a.SourceRequestID != nil {
		if _, ok := f.requests[*a.SourceRequestID]; ok {
			delete(f.requests, *a.SourceRequestID)
			res.RequestsRemoved = 1
		}
	}
	return res, nil
}

func (f *fakeStore) AddPrescriptions(_ context.Context, appointmentID, doctorID int, medicines []models.Medicine) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(medicines) == 0 {
		return 0, apperr.Validation("medicines must be a non-empty list")
	}
	a, ok := f.appointments[appointmentID]
	if !ok {
		return 0, apperr.NotFound("appointment")
	}
	if doctorID == 0 {
		doctorID = a.DoctorID
	} else if doctorID != a.DoctorID {
		return 0, fmt.Errorf("%w: appointment %d belongs to another doctor", apperr.ErrForbidden, appointmentID)
	}
	for _, m := range medicines {
		f.prescriptions = append(f.prescriptions, models.PrescriptionEntry{
			PrescriptionID: f.id(),
			AppointmentID:  appointmentID,
			DoctorID:       doctorID,
			MedicineName:   m.MedicineName,
			MedicineDosage: m.MedicineDosage,
			CreatedAt:      time.Now(),
		})
	}
	return int64(len(medicines)), nil
}

func (f *fakeStore) GetPrescription(_ context.Context, appointmentID int) (*models.PrescriptionView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.appointments[appointmentID]
	if !ok {
		return nil, apperr.NotFound("appointment")
	}
	view := &models.PrescriptionView{
		AppointmentID: appointmentID,
		PatientName:   a.PatientName,
		DoctorID:      a.DoctorID,
	}
	for _, d := range f.doctors {
		if d.DoctorID == a.DoctorID {
			view.DoctorName = d.Name
		}
	}
	for _, p := range f.prescriptions {
		if p.AppointmentID == appointmentID {
			view.Medicines = append(view.Medicines, p)
		}
	}
	return view, nil
}

func (f *fakeStore) ListDoctors(_ context.Context) ([]models.Doctor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Doctor(nil), f.doctors...), nil
}

func (f *fakeStore) ListNurses(_ context.Context) ([]models.Nurse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Nurse(nil), f.nurses...), nil
}

func (f *fakeStore) CreateDoctor(_ context.Context, in models.CreateDoctorRequest, passwordHash string) (*models.Doctor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.emailTaken(in.Email) {
		return nil, fmt.Errorf("%w: user already exists", apperr.ErrConflict)
	}
	d := models.Doctor{DoctorID: f.id(), Name: in.Name, Department: in.Department, Contact: in.Contact, Email: in.Email}
	d.UserID = f.addUser(in.Email, passwordHash, models.RoleDoctor, d.DoctorID).UserID
	f.doctors = append(f.doctors, d)
	return &d, nil
}

func (f *fakeStore) CreateNurse(_ context.Context, in models.CreateNurseRequest, passwordHash string) (*models.Nurse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.emailTaken(in.Email) {
		return nil, fmt.Errorf("%w: user already exists", apperr.ErrConflict)
	}
	n := models.Nurse{NurseID: f.id(), Name: in.Name, Contact: in.Contact, Email: in.Email}
	n.UserID = f.addUser(in.Email, passwordHash, models.RoleNurse, n.NurseID).UserID
	f.nurses = append(f.nurses, n)
	return &n, nil
}

func (f *fakeStore) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			c := *u
			return &c, nil
		}
	}
	return nil, apperr.NotFound("user")
}

func (f *fakeStore) FindUserByID(_ context.Context, userID int) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.UserID == userID {
			c := *u
			return &c, nil
		}
	}
	return nil, apperr.NotFound("user")
}

func (f *fakeStore) SetMFA(_ context.Context, userID int, secret string, enabled bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.UserID == userID {
			u.MFASecret = secret
			u.MFAEnabled = enabled
			return nil
		}
	}
	return apperr.NotFound("user")
}

func (f *fakeStore) SaveContactMessage(_ context.Context, msg *models.ContactMessage) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg.MessageID = f.id()
	msg.CreatedAt = time.Now()
	f.contacts = append(f.contacts, *msg)
	return msg.MessageID, nil
}

func (f *fakeStore) Stats(_ context.Context) (*models.Stats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := &models.Stats{AppointmentsByLevel: map[string]int{}, GeneratedAt: time.Now()}
	for _, r := range f.requests {
		s.TotalRequests++
		if r.RequestStatus == models.RequestPending {
			s.PendingRequests++
		} else {
			s.ApprovedRequests++
		}
	}
	for _, a := range f.appointments {
		s.TotalAppointments++
		s.AppointmentsByLevel[a.Critical]++
		if a.PaymentStatus == models.PaymentPaid {
			s.PaidAppointments++
			s.RevenueCollected += a.PaymentAmount
		} else {
			s.UnpaidAppointments++
		}
	}
	s.TotalDoctors = len(f.doctors)
	s.TotalNurses = len(f.nurses)
	s.TotalPrescriptions = len(f.prescriptions)
	return s, nil
}

func (f *fakeStore) SaveLog(_ context.Context, e models.CreateLogRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, models.Log{
		IDLog:       f.id(),
		RequestID:   e.RequestID,
		Method:      e.Method,
		Path:        e.Path,
		StatusCode:  e.StatusCode,
		IP:          e.IP,
		LogLevel:    e.LogLevel,
		Environment: e.Environment,
		CreatedAt:   time.Now(),
	})
	return nil
}

func (f *fakeStore) ListLogs(_ context.Context, filter models.LogFilter) ([]models.Log, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Log
	for _, l := range f.logs {
		if filter.LogLevel != "" && l.LogLevel != filter.LogLevel {
			continue
		}
		out = append(out, l)
	}
	return out, len(out), nil
}
