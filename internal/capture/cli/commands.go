package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"
)

func (a *App) hasInspection() bool {
	return a.currentID != ""
}

// NewInspection prompts for the inspection details and creates a DRAFT
// record, which becomes the current inspection.
func (a *App) NewInspection(ctx context.Context) error {
	client, err := GetSimpleText(a.reader, "Client name", os.Stdout)
	if err != nil {
		return err
	}
	address, err := GetSimpleText(a.reader, "Property address", os.Stdout)
	if err != nil {
		return err
	}
	claim, err := GetSimpleText(a.reader, "Claim number", os.Stdout)
	if err != nil {
		return err
	}
	dateStr, err := GetSimpleText(a.reader, "Inspection date (YYYY-MM-DD, empty for today)", os.Stdout)
	if err != nil {
		return err
	}

	date := time.Now().UTC()
	if dateStr != "" {
		date, err = time.Parse("2006-01-02", dateStr)
		if err != nil {
			log.Println("invalid date:", err)
			return err
		}
	}

	insp, err := a.svc.CreateInspection(ctx, client, address, claim, date)
	if err != nil {
		log.Println(err.Error())
		return err
	}

	a.currentID = insp.ID
	fmt.Println("Created inspection", insp.ID)
	return nil
}

// Open selects an existing inspection as the current one.
func (a *App) Open(ctx context.Context, id string) error {
	insp, err := a.st.Inspections.GetByID(ctx, id)
	if err != nil {
		log.Println(err.Error())
		return err
	}
	a.currentID = insp.ID
	fmt.Printf("Opened inspection %s (%s, %s)\n", insp.ID, insp.Client, insp.Status)
	return nil
}

// StartRecording begins the continuous audio capture for the current
// inspection.
func (a *App) StartRecording(ctx context.Context) error {
	if !a.hasInspection() {
		fmt.Println("No inspection selected. Use 'new' or 'open <id>' first.")
		return nil
	}
	if err := a.svc.StartRecording(ctx); err != nil {
		log.Println(err.Error())
		return err
	}
	fmt.Println("Recording started")
	return nil
}

// Photo captures a photograph stamped with the current audio timestamp.
func (a *App) Photo(ctx context.Context) error {
	if !a.hasInspection() {
		fmt.Println("No inspection selected. Use 'new' or 'open <id>' first.")
		return nil
	}
	photo, err := a.svc.CapturePhoto(ctx, a.currentID)
	if err != nil {
		log.Println(err.Error())
		return err
	}
	fmt.Printf("Photo %s captured at %s into the recording\n",
		photo.ID, (time.Duration(photo.AudioTimestampMs) * time.Millisecond).String())
	return nil
}

// Finish stops the recording and stores the audio with the inspection.
func (a *App) Finish(ctx context.Context) error {
	if !a.hasInspection() {
		fmt.Println("No inspection selected. Use 'new' or 'open <id>' first.")
		return nil
	}
	uri, err := a.svc.FinishRecording(ctx, a.currentID)
	if err != nil {
		log.Println(err.Error())
		return err
	}
	fmt.Println("Recording stored at", uri)
	return nil
}

// List prints the stored inspections, most recent first.
func (a *App) List(ctx context.Context) error {
	items, err := a.st.Inspections.List(ctx)
	if err != nil {
		log.Println(err.Error())
		return err
	}
	for _, item := range items {
		fmt.Printf("%s  %-10s  %s  %s (claim %s)\n",
			item.ID, item.Status, item.Client, item.Address, item.ClaimNumber)
	}
	return nil
}

// Delete removes the current inspection together with its photos.
func (a *App) Delete(ctx context.Context) error {
	if !a.hasInspection() {
		fmt.Println("No inspection selected. Use 'new' or 'open <id>' first.")
		return nil
	}
	if err := a.svc.DeleteInspection(ctx, a.currentID); err != nil {
		log.Println(err.Error())
		return err
	}
	fmt.Println("Deleted inspection", a.currentID)
	a.currentID = ""
	return nil
}

// Sync re-enqueues anything unsynced and drains the outbox immediately
// instead of waiting for the next poll.
func (a *App) Sync(ctx context.Context) error {
	n, err := a.worker.Reconcile(ctx)
	if err != nil {
		log.Println(err.Error())
		return err
	}
	if err := a.worker.ProcessOnce(ctx); err != nil {
		log.Println(err.Error())
		return err
	}
	fmt.Printf("Sync pass finished (%d items re-enqueued)\n", n)
	return nil
}
