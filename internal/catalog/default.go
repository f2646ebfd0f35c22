package catalog

// defaultCatalog is the built-in schema description used when no catalog
// file is configured. It mirrors the tables described in the project docs.
const defaultCatalog = `
datasets:
  - name: structure
    tables:
      - name: documents
        columns:
          - {name: sid, type: string, primary: true}
          - {name: uid, type: string}
          - {name: path, type: string}
          - {name: url, type: string}
          - {name: url_type, type: string}
          - {name: slug, type: string}
          - {name: title, type: string}
          - {name: format, type: string}
          - {name: level, type: int}
          - {name: order, type: int}
          - {name: base_dir, type: string}
          - {name: description, type: string}
          - {name: date, type: string}
          - {name: lastmod, type: string}
          - {name: image, type: string}
          - {name: tags, type: string_list}
          - {name: features, type: string_list}
          - {name: model, type: string}
          - {name: meta, type: string}
          - {name: headings_list, type: string_list}
      - name: items
        columns:
          - {name: id, type: int, primary: true, autoincrement: true}
          - {name: doc_sid, type: string}
          - {name: type, type: string}
          - {name: level, type: int}
          - {name: order_index, type: int}
          - {name: body_text, type: string}
          - {name: slug, type: string}
          - {name: asset_uid, type: string}
          - {name: tree, type: string}
      - name: assets
        columns:
          - {name: id, type: int, primary: true, autoincrement: true}
          - {name: uid, type: string}
          - {name: sid, type: string}
          - {name: type, type: string}
          - {name: doc_sid, type: string}
          - {name: path, type: string}
          - {name: abs_path, type: string}
          - {name: url, type: string}
          - {name: ext, type: string}
          - {name: exists, type: boolean}
          - {name: external, type: boolean}
          - {name: language, type: string}
          - {name: blob_uid, type: int}
          - {name: first_seen, type: string}
          - {name: last_seen, type: string}
      - name: images
        columns:
          - {name: id, type: int, primary: true, autoincrement: true}
          - {name: uid, type: string}
          - {name: sid, type: string}
          - {name: doc_sid, type: string}
          - {name: slug, type: string}
          - {name: title, type: string}
          - {name: alt, type: string}
          - {name: url, type: string}
          - {name: width, type: int}
          - {name: height, type: int}
          - {name: text_list, type: string_list}
          - {name: blob_uid, type: int}
          - {name: order_index, type: int}
          - {name: first_seen, type: string}
          - {name: last_seen, type: string}
      - name: blobs
        columns:
          - {name: blob_uid, type: int, primary: true}
          - {name: hash, type: string}
          - {name: size, type: int}
          - {name: path, type: string}
          - {name: payload, type: blob}
          - {name: compression, type: boolean}
          - {name: first_seen, type: string}
          - {name: last_seen, type: string}
      - name: refs
        columns:
          - {name: id, type: int, primary: true, autoincrement: true}
          - {name: asset_uid, type: string}
          - {name: doc_sid, type: string}
      - name: versions
        columns:
          - {name: version_id, type: string, primary: true}
          - {name: created_at, type: string}
          - {name: type, type: string}
          - {name: tags_list, type: string_list}
`
