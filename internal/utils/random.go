package utils

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/filaops/scheduler/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var firstNames = []string{
	"Alex", "Sam", "Jordan", "Taylor", "Casey", "Morgan", "Riley", "Avery",
	"Quinn", "Dana", "Jamie", "Robin", "Lee", "Drew", "Kim", "Pat",
}
var lastNames = []string{
	"Miller", "Chen", "Garcia", "Patel", "Novak", "Kim", "Silva", "Weber",
	"Okafor", "Brandt", "Rossi", "Dubois", "Nakamura", "Olsen", "Kowalski",
}

func GenerateRandomFullName() string {
	return firstNames[rand.Intn(len(firstNames))] + " " + lastNames[rand.Intn(len(lastNames))]
}

var digits = "0123456789"

func GenerateUsernameFromFullName(fullName string) string {
	parts := strings.Fields(strings.ToLower(fullName))
	username := ""
	for _, part := range parts {
		length := rand.Intn(len(part)) + 1
		username += part[:length]
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

var roles = []domain.Role{
	domain.RoleViewer,
	domain.RolePlanner,
	domain.RoleAdmin,
}

func GenerateRandomRole() domain.Role {
	return roles[rand.Intn(len(roles))]
}

func GenerateRandomUser(password string, emailDomainName string) (*domain.User, error) {
	fullName := GenerateRandomFullName()
	username := GenerateUsernameFromFullName(fullName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(passwordHash),
		FullName:     fullName,
		Email:        username + "@" + emailDomainName,
		Role:         GenerateRandomRole(),
	}

	return user, nil
}

func GenerateRandomOTP() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	password := make([]rune, length)
	for i := range password {
		password[i] = letters[rand.Intn(len(letters))]
	}
	return string(password)
}

var machinePrefixes = []string{"Prusa", "Bambu", "Voron", "Ender", "Ultimaker", "Raise3D"}

var machineStatuses = []domain.MachineStatus{
	domain.MachineAvailable,
	domain.MachineBusy,
	domain.MachineOffline,
}

func GenerateRandomMachine() *domain.Machine {
	return &domain.Machine{
		Name:   fmt.Sprintf("%s-%02d", machinePrefixes[rand.Intn(len(machinePrefixes))], rand.Intn(100)),
		Status: machineStatuses[rand.Intn(len(machineStatuses))],
	}
}

var jobParts = []string{
	"Bracket", "Housing", "Gear", "Spool Holder", "Mount Plate", "Nozzle Shroud",
	"Fan Duct", "Jig", "Fixture", "Enclosure Panel",
}

// GenerateRandomJob produces an unscheduled job with one of the three
// duration-estimation shapes: routing operations, a flat per-unit estimate,
// or no estimate at all.
func GenerateRandomJob() *domain.Job {
	job := &domain.Job{
		Name:     fmt.Sprintf("%s #%03d", jobParts[rand.Intn(len(jobParts))], rand.Intn(1000)),
		OrderRef: fmt.Sprintf("SO-%05d", rand.Intn(100000)),
		Status:   domain.JobPending,
		Quantity: int32(rand.Intn(20) + 1),
	}

	switch rand.Intn(3) {
	case 0:
		opsNum := rand.Intn(3) + 1
		for i := 0; i < opsNum; i++ {
			job.Operations = append(job.Operations, domain.JobOperation{
				Sequence:     int32(i + 1),
				Name:         fmt.Sprintf("op %d", i+1),
				SetupMinutes: int32(rand.Intn(30)),
				RunMinutes:   int32(rand.Intn(240) + 30),
			})
		}
	case 1:
		hours := float64(rand.Intn(8)+1) / 2
		job.EstimatedHoursPerUnit = &hours
	}

	return job
}
