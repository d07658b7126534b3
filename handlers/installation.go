package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
	"qonevo.in/fieldops/config"
	"qonevo.in/fieldops/models"
	"qonevo.in/fieldops/utils"
)

// startRadiusMeters is how far from the site coordinates an installer can
// start a job before we flag it. Warning only, never blocking.
const startRadiusMeters = 500.0

// jobActionSources lists which states each explicit action accepts.
// Completed jobs may be re-completed: installers toggle item checkboxes
// and complete again, and the sub-state is recomputed from the counts.
var jobActionSources = map[string][]string{
	"start":    {models.JobScheduled},
	"complete": {models.JobInProgress, models.JobCompletedFull, models.JobCompletedPartial},
	"verify":   {models.JobCompletedFull, models.JobCompletedPartial},
	"close":    {models.JobVerified},
}

// checkTransition validates that an action is legal from the current
// state. The returned error is user-visible.
func checkTransition(current, action string) error {
	allowed, ok := jobActionSources[action]
	if !ok {
		return models.NewValidationError("unknown action %q", action)
	}
	for _, state := range allowed {
		if current == state {
			return nil
		}
	}
	return models.NewValidationError("cannot %s an installation job in state %q", action, current)
}

// completionRequirements are the explicit-completion gates: at least one
// photo and the customer's signature must already be on the job. The
// incidental item-update path never runs these.
func completionRequirements(job *models.InstallationJob) error {
	if len(job.Photos) == 0 {
		return models.NewValidationError("at least one photo is required before completing the installation")
	}
	if job.CustomerSignature == nil || *job.CustomerSignature == "" {
		return models.NewValidationError("customer signature is required before completing the installation")
	}
	return nil
}

// verifyRequirements demands the warranty-start decision at sign-off.
func verifyRequirements(job *models.InstallationJob) error {
	if job.WarrantyStartAction == nil || *job.WarrantyStartAction == "" {
		return models.NewValidationError("warranty start action is required when verifying the job")
	}
	return nil
}

// InstallationEngine performs the explicit state transitions on
// installation jobs. Each action validates, transitions and persists
// atomically; on error the job is left unchanged.
type InstallationEngine struct {
	db *gorm.DB
}

func NewInstallationEngine(db *gorm.DB) *InstallationEngine {
	return &InstallationEngine{db: db}
}

func (e *InstallationEngine) load(tx *gorm.DB, jobID string) (*models.InstallationJob, error) {
	var job models.InstallationJob
	if err := tx.Preload("Items").First(&job, "id = ?", jobID).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// Start moves a scheduled job to In Progress and stamps the installation
// date. When the installer's position is reported and the job knows its
// site coordinates, a distance outside the allowed radius produces a
// warning on the response.
func (e *InstallationEngine) Start(jobID string, lat, lng *float64) (*models.InstallationJob, []string, error) {
	var job *models.InstallationJob
	var warnings []string

	err := e.db.Transaction(func(tx *gorm.DB) error {
		var err error
		job, err = e.load(tx, jobID)
		if err != nil {
			return err
		}
		if err := checkTransition(job.Status, "start"); err != nil {
			return err
		}

		job.Status = models.JobInProgress
		if job.InstallationDate == nil {
			now := models.JSONTime(time.Now())
			job.InstallationDate = &now
		}
		if lat != nil && lng != nil {
			job.StartLatitude = lat
			job.StartLongitude = lng
			if job.SiteLatitude != nil && job.SiteLongitude != nil {
				d := utils.DistanceMeters(*job.SiteLatitude, *job.SiteLongitude, *lat, *lng)
				if d > startRadiusMeters {
					warnings = append(warnings,
						fmt.Sprintf("job started %.0f m from the site location", d))
				}
			}
		}
		return tx.Save(job).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return job, warnings, nil
}

// UpdateItems applies installed/not-installed toggles to the job's item
// rows. This is the incidental-save path: the per-row invariant is
// enforced, the derived counters are recomputed, but photo and signature
// are not required here.
func (e *InstallationEngine) UpdateItems(jobID string, updates []JobItemUpdate) (*models.InstallationJob, error) {
	var job *models.InstallationJob

	err := e.db.Transaction(func(tx *gorm.DB) error {
		var err error
		job, err = e.load(tx, jobID)
		if err != nil {
			return err
		}
		if models.IsTerminal(job.Status) {
			return models.NewValidationError("cannot update items of a %s job", job.Status)
		}

		byID := make(map[uuid.UUID]*models.InstallationJobItem, len(job.Items))
		for i := range job.Items {
			byID[job.Items[i].ID] = &job.Items[i]
		}
		for _, u := range updates {
			item, ok := byID[u.ItemID]
			if !ok {
				return models.NewValidationError("item %s does not belong to this job", u.ItemID)
			}
			item.Installed = u.Installed
			item.NotInstalledReason = u.NotInstalledReason
		}

		// Save triggers the model hook: row validation + summary recompute.
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(job).Error
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

// Complete performs the explicit completion action. It requires at least
// one photo and the customer signature, stamps the installation date if
// missing, derives the Full/Partial sub-state from the item counts, and
// issues warranties for the installed items.
func (e *InstallationEngine) Complete(jobID string, installerNotes *string) (*models.InstallationJob, *IssueResult, error) {
	var job *models.InstallationJob
	var issued IssueResult

	err := e.db.Transaction(func(tx *gorm.DB) error {
		var err error
		job, err = e.load(tx, jobID)
		if err != nil {
			return err
		}
		if err := checkTransition(job.Status, "complete"); err != nil {
			return err
		}
		if err := completionRequirements(job); err != nil {
			return err
		}

		if installerNotes != nil {
			job.InstallerNotes = installerNotes
		}
		if job.InstallationDate == nil {
			now := models.JSONTime(time.Now())
			job.InstallationDate = &now
		}

		job.ComputeSummary()
		job.Status = job.CompletionStatus()
		if err := tx.Save(job).Error; err != nil {
			return err
		}

		issued, err = NewWarrantyLedger(tx).Issue(job)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return job, &issued, nil
}

// Verify performs the operations sign-off. The warranty-start decision is
// mandatory; unless it is "Delay", warranties are (re-)issued for the
// installed items — idempotent, so items already covered are skipped.
func (e *InstallationEngine) Verify(jobID string, opsNotes, warrantyAction *string) (*models.InstallationJob, *IssueResult, error) {
	var job *models.InstallationJob
	var issued IssueResult

	err := e.db.Transaction(func(tx *gorm.DB) error {
		var err error
		job, err = e.load(tx, jobID)
		if err != nil {
			return err
		}
		if err := checkTransition(job.Status, "verify"); err != nil {
			return err
		}

		if warrantyAction != nil && *warrantyAction != "" {
			job.WarrantyStartAction = warrantyAction
		}
		if err := verifyRequirements(job); err != nil {
			return err
		}
		if opsNotes != nil {
			job.OpsNotes = opsNotes
		}

		job.Status = models.JobVerified
		if err := tx.Save(job).Error; err != nil {
			return err
		}

		if *job.WarrantyStartAction != models.WarrantyStartDelay {
			issued, err = NewWarrantyLedger(tx).Issue(job)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return job, &issued, nil
}

// Close moves a verified job to its terminal Closed state.
func (e *InstallationEngine) Close(jobID string) (*models.InstallationJob, error) {
	var job *models.InstallationJob

	err := e.db.Transaction(func(tx *gorm.DB) error {
		var err error
		job, err = e.load(tx, jobID)
		if err != nil {
			return err
		}
		if err := checkTransition(job.Status, "close"); err != nil {
			return err
		}
		job.Status = models.JobClosed
		return tx.Save(job).Error
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

// ---- HTTP layer ----

func GetInstallationJob(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var job models.InstallationJob
	if err := config.DB.Preload("Items").First(&job, "id = ?", id).Error; err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func GetAllInstallationJobs(w http.ResponseWriter, r *http.Request) {
	params, err := models.ParseReportParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := params.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	service := models.NewReportService(config.DB, models.InstallationJob{})
	response, err := service.GetReport(params)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

type startJobReq struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func StartInstallationJob(w http.ResponseWriter, r *http.Request) {
	var req startJobReq
	// an empty body is a start without coordinates
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	job, warnings, err := NewInstallationEngine(config.DB).Start(mux.Vars(r)["id"], req.Latitude, req.Longitude)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"job": job, "warnings": warnings})
}

// JobItemUpdate is one installed-flag toggle on a job row.
type JobItemUpdate struct {
	ItemID             uuid.UUID `json:"itemId"`
	Installed          *bool     `json:"installed"`
	NotInstalledReason *string   `json:"notInstalledReason"`
}

func UpdateInstallationJobItems(w http.ResponseWriter, r *http.Request) {
	var updates []JobItemUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	job, err := NewInstallationEngine(config.DB).UpdateItems(mux.Vars(r)["id"], updates)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

type completeJobReq struct {
	InstallerNotes *string `json:"installerNotes"`
}

func CompleteInstallationJob(w http.ResponseWriter, r *http.Request) {
	var req completeJobReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	job, issued, err := NewInstallationEngine(config.DB).Complete(mux.Vars(r)["id"], req.InstallerNotes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"job": job, "warranties": issued})
}

type verifyJobReq struct {
	OpsNotes            *string `json:"opsNotes"`
	WarrantyStartAction *string `json:"warrantyStartAction"`
}

func VerifyInstallationJob(w http.ResponseWriter, r *http.Request) {
	var req verifyJobReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	job, issued, err := NewInstallationEngine(config.DB).Verify(mux.Vars(r)["id"], req.OpsNotes, req.WarrantyStartAction)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"job": job, "warranties": issued})
}

func CloseInstallationJob(w http.ResponseWriter, r *http.Request) {
	job, err := NewInstallationEngine(config.DB).Close(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

type addPhotoReq struct {
	URL string `json:"url"`
}

// AddInstallationJobPhoto attaches an uploaded photo URL to the job.
func AddInstallationJobPhoto(w http.ResponseWriter, r *http.Request) {
	var req addPhotoReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		http.Error(w, "url is required", http.StatusBadRequest)
		return
	}

	id := mux.Vars(r)["id"]
	var job models.InstallationJob
	if err := config.DB.First(&job, "id = ?", id).Error; err != nil {
		writeError(w, err)
		return
	}
	if models.IsTerminal(job.Status) {
		writeError(w, models.NewValidationError("cannot attach photos to a %s job", job.Status))
		return
	}

	job.Photos = append(job.Photos, req.URL)
	if err := config.DB.Model(&job).Update("photos", job.Photos).Error; err != nil {
		http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

type signatureReq struct {
	Signature string `json:"signature"`
}

// SetCustomerSignature records the customer sign-off image/data URL.
func SetCustomerSignature(w http.ResponseWriter, r *http.Request) {
	var req signatureReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Signature == "" {
		http.Error(w, "signature is required", http.StatusBadRequest)
		return
	}

	id := mux.Vars(r)["id"]
	var job models.InstallationJob
	if err := config.DB.First(&job, "id = ?", id).Error; err != nil {
		writeError(w, err)
		return
	}
	if models.IsTerminal(job.Status) {
		writeError(w, models.NewValidationError("cannot sign a %s job", job.Status))
		return
	}

	if err := config.DB.Model(&job).Update("customer_signature", req.Signature).Error; err != nil {
		http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	job.CustomerSignature = &req.Signature
	writeJSON(w, http.StatusOK, job)
}
