package main

import (
	"log"

	"codedocs/internal/artifactmirror"
	"codedocs/internal/chatservice"
	"codedocs/internal/config"
	"codedocs/internal/docpipeline"
	"codedocs/internal/history"
	"codedocs/internal/httpapi"
	"codedocs/internal/llmclient"
)

func main() {
	cfgStore, port, err := config.Load("config.json")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	llmClient := llmclient.New()
	suggestSvc := chatservice.NewSuggestService(chatservice.NewDynamicLLMClient(cfgStore.Get))

	pipeline := docpipeline.NewService(llmClient, cfgStore.Get, 0)

	hist := history.NewFromEnv(config.HistoryDSN(), "docs_history.json")
	pipeline.OnTerminal(hist.RecordTask)

	mirrorCfg := config.LoadMirrorConfig()
	mirror, err := artifactmirror.New(mirrorCfg)
	if err != nil {
		log.Printf("artifact mirror disabled: %v", err)
	} else if mirror != nil {
		pipeline.OnCompleted(mirror.MirrorDocsRoot)
		log.Printf("artifact mirror enabled: bucket %s", mirrorCfg.Bucket)
	}

	api := httpapi.NewAPI(cfgStore, llmClient, suggestSvc, pipeline, hist)

	srv := httpapi.New(port, api.Routes())
	if err := srv.Start(); err != nil {
		log.Fatalf("server: %v", err)
	}
}
