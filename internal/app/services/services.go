// Package services holds the business rules of the portal.
//
// Services defined in this package:
//   - AuthService: registration, login, token refresh and logout
//   - InstitutionService: institution sign-up and the approval workflow for institutions and staff
//   - ProgramService: program catalog and requirement lists
//   - ApplicationService: submissions, status decisions and reviewer comments
//   - StudentService: student profiles, education history and saved programs
//   - ProfessorService: professor profiles
//   - DocumentService: document uploads and verification
//   - NotificationService: persisted notifications pushed over websockets
//   - ClientStorageService: per-account key/value storage behind the cache
//   - StatsService: landing-page counters behind the cache
package services
