package scraper

import (
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"

	"nfestatus/app/internal/models"
)

const tableID = "ctl00_ContentPlaceHolder1_gdvDisponibilidade2"

// imgStatusMap translates the portal's status ball images into colors.
var imgStatusMap = map[string]string{
	"bola_verde_P.png":    models.StatusVerde,
	"bola_amarela_P.png":  models.StatusAmarelo,
	"bola_vermelho_P.png": models.StatusVermelho,
	"bola_cinza_P.png":    models.StatusCinza,
}

var tsRe = regexp.MustCompile(`Última Verificação:\s*(\d{2}/\d{2}/\d{4} \d{2}:\d{2}:\d{2})`)

// autorizadorInfo carries static metadata for the SEFAZ virtual authorizers.
var autorizadorInfo = map[string]map[string]any{
	"SVAN": {
		"tipo":            "Sefaz Virtual Ambiente Nacional",
		"ufs_autorizador": []string{"MA"},
	},
	"SVRS": {
		"tipo":                  "Sefaz Virtual Rio Grande do Sul",
		"ufs_autorizador":       []string{"AC", "AL", "AP", "CE", "DF", "ES", "PA", "PB", "PI", "RJ", "RN", "RO", "RR", "SC", "SE", "TO"},
		"ufs_consulta_cadastro": []string{"AC", "ES", "RN", "PB", "SC"},
	},
	"SVC-AN": {
		"tipo":             "Contingência Nacional",
		"ufs_contingencia": []string{"AC", "AL", "AP", "CE", "DF", "ES", "MG", "PA", "PB", "PI", "RJ", "RN", "RO", "RR", "RS", "SC", "SE", "SP", "TO"},
	},
	"SVC-RS": {
		"tipo":             "Contingência RS",
		"ufs_contingencia": []string{"AM", "BA", "GO", "MA", "MS", "MT", "PE", "PR"},
	},
}

// Parse extracts the availability table from the portal HTML. The caption
// timestamp is read in loc (the portal shows Brasília local time) and stored
// as UTC. Rows with a cell-count mismatch are skipped with a warning.
func Parse(htmlSrc string, loc *time.Location) (models.Snapshot, error) {
	doc, err := html.Parse(strings.NewReader(htmlSrc))
	if err != nil {
		return models.Snapshot{}, err
	}

	table := findByID(doc, tableID)
	if table == nil {
		return models.Snapshot{}, fmt.Errorf("availability table %q not found", tableID)
	}

	trs := findAll(table, "tr")
	if len(trs) == 0 {
		return models.Snapshot{}, fmt.Errorf("availability table has no rows")
	}

	var headers []string
	for _, th := range findAll(trs[0], "th") {
		headers = append(headers, nodeText(th))
	}
	if err := validateHeaders(headers); err != nil {
		return models.Snapshot{}, err
	}

	snap := models.Snapshot{}
	if caption := findFirst(table, "caption"); caption != nil {
		snap.CheckedAt = parseTimestamp(nodeText(caption), loc)
	}
	if snap.CheckedAt.IsZero() {
		log.Printf("no caption timestamp found, using current time")
		snap.CheckedAt = time.Now().UTC()
	}

	for i, tr := range trs[1:] {
		cells := findAll(tr, "td")
		if len(cells) != len(headers) {
			log.Printf("row %d: cell count mismatch, expected %d got %d", i+1, len(headers), len(cells))
			continue
		}

		row := make(map[string]any, len(cells))
		autorizador := ""
		for ci, cell := range cells {
			key := NormalizeKey(headers[ci])
			if img := findFirst(cell, "img"); img != nil {
				src := attr(img, "src")
				filename := src[strings.LastIndex(src, "/")+1:]
				status, known := imgStatusMap[filename]
				if !known {
					log.Printf("unknown status image: %s", filename)
					status = models.StatusDesconhecido
				}
				row[key] = status
			} else if text := nodeText(cell); text != "" {
				row[key] = text
			} else {
				row[key] = nil
			}
			if key == "autorizador" {
				autorizador, _ = row[key].(string)
			}
		}

		for k, v := range metadataFor(autorizador) {
			row[NormalizeKey(k)] = v
		}
		snap.Statuses = append(snap.Statuses, row)
	}
	return snap, nil
}

func validateHeaders(headers []string) error {
	for _, h := range headers {
		if h == "Autorizador" || h == "Status" {
			return nil
		}
	}
	return fmt.Errorf("expected headers not found, got %v", headers)
}

func parseTimestamp(caption string, loc *time.Location) time.Time {
	m := tsRe.FindStringSubmatch(caption)
	if m == nil {
		log.Printf("timestamp pattern not found in caption: %s", strings.TrimSpace(caption))
		return time.Time{}
	}
	ts, err := time.ParseInLocation("02/01/2006 15:04:05", m[1], loc)
	if err != nil {
		log.Printf("failed to parse timestamp %q: %v", m[1], err)
		return time.Time{}
	}
	return ts.UTC()
}

// metadataFor resolves authorizer metadata, falling back to a relacionado_a
// marker when the name only appears inside another authorizer's UF lists.
func metadataFor(autorizador string) map[string]any {
	if meta, ok := autorizadorInfo[autorizador]; ok {
		return meta
	}
	for code, info := range autorizadorInfo {
		for _, v := range info {
			ufs, ok := v.([]string)
			if !ok {
				continue
			}
			for _, uf := range ufs {
				if uf == autorizador {
					return map[string]any{"relacionado_a": code}
				}
			}
		}
	}
	return nil
}

// --------------- html tree helpers ---------------

func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode && attr(n, "id") == id {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

func findFirst(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func findAll(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			out = append(out, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	return out
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}
